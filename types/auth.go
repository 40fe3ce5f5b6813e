package types

import (
	"strings"
	"time"

	"github.com/nakamauwu/chatsync/validator"
)

// AuthOutput is what the backend answers to a successful login.
type AuthOutput struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Credential is the client state kept across sessions.
type Credential struct {
	Token     string     `yaml:"token"`
	User      User       `yaml:"user"`
	ExpiresAt *time.Time `yaml:"expiresAt,omitempty"`
}

func (c Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *Login) Validate() error {
	v := validator.New()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	v.Check(ValidEmail(in.Email), "Email", "Email is invalid")
	v.Check(in.Password != "", "Password", "Password is required")

	return v.AsError()
}
