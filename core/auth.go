package core

import (
	"context"
	"errors"
)

// Identity is the authenticated principal attached to a request context.
// At most one per request; absence means anonymous.
type Identity struct {
	Username string
	Role     string
}

// ErrInvalidCredentials is returned when username/password is wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService issues access tokens for username/password pairs.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
}
