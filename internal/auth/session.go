package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session token errors.
var (
	ErrMissingSession = errors.New("session credential missing")
	ErrInvalidSession = errors.New("session credential invalid")
	ErrExpiredSession = errors.New("session credential expired")
)

// DefaultIssuer is the iss claim expected on session tokens.
const DefaultIssuer = "flashdeck"

// SessionClaims is the payload of a session token issued by the identity provider.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Sessions signs and verifies HS256 session tokens with a shared secret.
type Sessions struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewSessions creates a session codec. An empty issuer means DefaultIssuer.
func NewSessions(secret, issuer string) *Sessions {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &Sessions{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// Issue signs a session token for email valid for ttl.
// Production tokens come from the identity provider; this is used by
// provisioning tools and tests.
func (s *Sessions) Issue(email, name string, ttl time.Duration) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("issue session: email is required")
	}

	now := s.now()
	claims := SessionClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Parse verifies a session token and returns its claims.
func (s *Sessions) Parse(raw string) (*SessionClaims, error) {
	if raw == "" {
		return nil, ErrMissingSession
	}

	var claims SessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredSession
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims.Email = strings.TrimSpace(claims.Email)
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: email claim missing", ErrInvalidSession)
	}
	return &claims, nil
}
