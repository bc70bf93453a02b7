package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func validClaims() Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:   "user-1",
		Username: "alice",
		Email:    "alice@example.com",
	}
}

func TestVerifyReturnsIdentity(t *testing.T) {
	v := NewVerifier(testSecret, "")

	identity, err := v.Verify(signToken(t, testSecret, validClaims()))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if identity.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", identity.UserID, "user-1")
	}
	if identity.Username != "alice" {
		t.Errorf("Username = %q, want %q", identity.Username, "alice")
	}
	if identity.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", identity.Email, "alice@example.com")
	}
}

func TestVerifyRejectsInvalidTokens(t *testing.T) {
	v := NewVerifier(testSecret, "")

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	noUserID := validClaims()
	noUserID.UserID = ""

	tcs := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong secret", signToken(t, "other-secret", validClaims())},
		{"expired", signToken(t, testSecret, expired)},
		{"missing user id", signToken(t, testSecret, noUserID)},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			identity, err := v.Verify(tc.token)
			if identity != nil {
				t.Fatalf("Verify returned identity for invalid token: %+v", identity)
			}
			// Every failure mode must collapse to the same generic error
			// so the endpoint cannot be used to probe token state.
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Verify error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

func TestVerifyChecksIssuerWhenConfigured(t *testing.T) {
	v := NewVerifier(testSecret, "api-service")

	claims := validClaims()
	claims.Issuer = "api-service"
	if _, err := v.Verify(signToken(t, testSecret, claims)); err != nil {
		t.Fatalf("Verify rejected matching issuer: %v", err)
	}

	claims.Issuer = "someone-else"
	if _, err := v.Verify(signToken(t, testSecret, claims)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestVerifyRejectsWrongSigningMethod(t *testing.T) {
	v := NewVerifier(testSecret, "")

	// alg=none tokens must never pass.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims())
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := v.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify error = %v, want %v", err, ErrInvalidToken)
	}
}
