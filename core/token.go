package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid covers malformed, forged, and expired tokens alike.
// Callers treat all three the same way, so they are not distinguished.
var ErrTokenInvalid = errors.New("invalid token")

// The jwt library truncates iat/exp to whole seconds by default, which
// would expire a token with a sub-second validity window at issuance.
func init() {
	jwt.TimePrecision = time.Millisecond
}

// TokenClaims is the payload embedded in issued tokens.
type TokenClaims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed bearer tokens (HS256).
// The signing key is fixed for the process lifetime; verification is a
// pure function of (token, current time, key).
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
}

func NewTokenService(signingKey []byte, ttl time.Duration) *TokenService {
	return &TokenService{signingKey: signingKey, ttl: ttl}
}

// Issue returns a signed token carrying subject with iat=now and
// exp=now+ttl.
func (ts *TokenService) Issue(subject string) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string. Expiry is strict: a token
// is rejected at or past its exp claim, with no skew allowance.
func (ts *TokenService) Verify(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ExtractSubject pulls the subject out of a token without verifying the
// signature or expiry. Diagnostics only; never an authorization input.
func (ts *TokenService) ExtractSubject(tokenString string) (string, bool) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, &TokenClaims{})
	if err != nil {
		return "", false
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
