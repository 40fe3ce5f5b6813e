package types

import (
	"regexp"
)

// User is the one shape a sender, participant or reactor takes once it is
// inside the client, whatever the server sent.
type User struct {
	ID     string     `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Avatar string     `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Status UserStatus `json:"status,omitempty" yaml:"-"`
}

type UserStatus string

const (
	UserStatusOnline  UserStatus = "online"
	UserStatusOffline UserStatus = "offline"
)

func (s UserStatus) String() string {
	return string(s)
}

func (s UserStatus) Valid() bool {
	return s == UserStatusOnline || s == UserStatusOffline
}

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(s string) bool {
	return reEmail.MatchString(s)
}
