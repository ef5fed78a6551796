package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// RepositoryAuthService implements AuthService on top of UserRepository
// and bcrypt password hashing.
type RepositoryAuthService struct {
	users  UserRepository
	tokens *TokenService
}

func NewRepositoryAuthService(users UserRepository, tokens *TokenService) *RepositoryAuthService {
	return &RepositoryAuthService{users: users, tokens: tokens}
}

// Login returns a fresh access token for the given credentials.
//
// An unknown username is treated as implicit self-registration: the
// supplied password is hashed and a new user with role "USER" is created
// before the token is issued. A known username must present the matching
// password; mismatch is ErrInvalidCredentials.
//
// Two concurrent first logins for the same username race on the
// users.username uniqueness constraint; the loser retries the lookup once
// so both callers see the registered account.
func (s *RepositoryAuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrInvalidCredentials
	}

	u, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return s.issueFor(u, password)
	case errors.Is(err, ErrUserNotFound):
		return s.register(ctx, username, password)
	default:
		return "", fmt.Errorf("login lookup: %w", err)
	}
}

func (s *RepositoryAuthService) issueFor(u *UserRecord, password string) (string, error) {
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(u.Username)
}

func (s *RepositoryAuthService) register(ctx context.Context, username, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.users.Create(ctx, username, string(hash), "USER"); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			// Lost the first-login race; the row now exists, verify against it.
			u, ferr := s.users.FindByUsername(ctx, username)
			if ferr != nil {
				return "", fmt.Errorf("login after registration race: %w", ferr)
			}
			return s.issueFor(u, password)
		}
		return "", fmt.Errorf("register user: %w", err)
	}

	log.Printf("registered new user %s", username)
	return s.tokens.Issue(username)
}
