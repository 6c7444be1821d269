package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	s := NewService("secret")
	tok, exp, err := s.Issue("acc-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expiry %v not in the future", exp)
	}
	sub, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sub != "acc-1" {
		t.Errorf("subject = %q, want acc-1", sub)
	}
}

func TestVerifyRejects(t *testing.T) {
	s := NewService("secret")
	good, _, _ := s.Issue("acc-1", time.Hour)

	past := time.Now().Add(-48 * time.Hour)
	expired, _, _ := s.WithClock(func() time.Time { return past }).Issue("acc-1", time.Hour)

	otherKey, _, _ := NewService("other").Issue("acc-1", time.Hour)

	// HS512 with the right key must still be refused.
	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: "acc-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "acc-1"}).
		SignedString([]byte("secret"))

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	cases := map[string]string{
		"empty":     "",
		"garbage":   "not-a-token",
		"expired":   expired,
		"other key": otherKey,
		"wrong alg": wrongAlg,
		"no expiry": noExpiry,
		"tampered":  tampered,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Verify(raw); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestIssueValidatesInput(t *testing.T) {
	s := NewService("secret")
	if _, _, err := s.Issue("", time.Hour); err == nil {
		t.Error("expected error for empty subject")
	}
	if _, _, err := s.Issue("acc", 0); err == nil {
		t.Error("expected error for zero ttl")
	}
}
