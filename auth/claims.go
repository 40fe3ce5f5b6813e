package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nakamauwu/chatsync/types"
	goerrs "github.com/nicolasparada/go-errs"
)

type Claims struct {
	UserID    string
	ExpiresAt *time.Time
}

var userIDClaims = []string{"id", "userId", "user_id", "sub"}

// ClaimsFromToken reads the user and the expiry out of a token without
// checking its signature. Only the server can verify it; the client just
// needs to know who it is and when to log in again.
func ClaimsFromToken(token string) (Claims, error) {
	var out Claims

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return out, goerrs.InvalidArgumentError(fmt.Sprintf("malformed token: %v", err))
	}

	for _, name := range userIDClaims {
		switch v := claims[name].(type) {
		case string:
			out.UserID = v
		case float64:
			out.UserID = fmt.Sprintf("%.0f", v)
		}
		if out.UserID != "" {
			break
		}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return out, goerrs.InvalidArgumentError(fmt.Sprintf("malformed token expiry: %v", err))
	}
	if exp != nil {
		at := exp.UTC()
		out.ExpiresAt = &at
	}

	return out, nil
}

// NewCredential builds the credential to persist after a login. The user
// ID falls back to the token's when the login response lacks it.
func NewCredential(out types.AuthOutput) (types.Credential, error) {
	claims, err := ClaimsFromToken(out.Token)
	if err != nil {
		return types.Credential{}, err
	}

	cred := types.Credential{
		Token:     out.Token,
		User:      out.User,
		ExpiresAt: claims.ExpiresAt,
	}
	if cred.User.ID == "" {
		cred.User.ID = claims.UserID
	}
	if cred.User.ID == "" {
		return types.Credential{}, goerrs.InvalidArgumentError("token does not identify a user")
	}
	return cred, nil
}
