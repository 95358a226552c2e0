package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestSessions_IssueAndParse(t *testing.T) {
	s := NewSessions(testSecret, "")

	token, err := s.Issue("ada@example.com", "Ada", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := s.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Email != "ada@example.com" || claims.Name != "Ada" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != DefaultIssuer {
		t.Fatalf("expected issuer %q, got %q", DefaultIssuer, claims.Issuer)
	}
}

func TestSessions_Rejections(t *testing.T) {
	s := NewSessions(testSecret, "")
	valid, err := s.Issue("ada@example.com", "", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	expiredIssuer := NewSessions(testSecret, "")
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.Issue("ada@example.com", "", time.Hour)
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	otherSecret, err := NewSessions("another-secret-another-secret-xx", "").Issue("ada@example.com", "", time.Hour)
	if err != nil {
		t.Fatalf("issue other secret: %v", err)
	}

	otherIssuer, err := NewSessions(testSecret, "someone-else").Issue("ada@example.com", "", time.Hour)
	if err != nil {
		t.Fatalf("issue other issuer: %v", err)
	}

	noEmail := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noEmailToken, err := noEmail.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign no-email: %v", err)
	}

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Email:            "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: DefaultIssuer},
	})
	noExpiryToken, err := noExpiry.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign no-expiry: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingSession},
		{"garbage", "not-a-jwt", ErrInvalidSession},
		{"tampered", valid + "x", ErrInvalidSession},
		{"expired", expired, ErrExpiredSession},
		{"wrong secret", otherSecret, ErrInvalidSession},
		{"wrong issuer", otherIssuer, ErrInvalidSession},
		{"missing email", noEmailToken, ErrInvalidSession},
		{"missing expiry", noExpiryToken, ErrInvalidSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Parse(tt.token); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSessions_IssueRequiresEmail(t *testing.T) {
	if _, err := NewSessions(testSecret, "").Issue("  ", "", time.Hour); err == nil {
		t.Fatal("expected error for blank email")
	}
}
