// Package testutil provides fakes shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const tokenSecret = "habitual-test-secret"

// Token returns a signed session token for subject valid for one hour.
func Token(t testing.TB, subject string) string {
	t.Helper()
	return TokenExpiring(t, subject, time.Now().Add(time.Hour))
}

// TokenExpiring returns a signed session token for subject expiring at exp.
func TokenExpiring(t testing.TB, subject string, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tokenSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// subjectOf verifies a token minted by Token and returns its subject.
func subjectOf(raw string) (string, bool) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(tokenSecret), nil
	})
	if err != nil || !tok.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
