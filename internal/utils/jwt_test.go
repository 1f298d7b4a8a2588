package utils_test

import (
	"errors"
	"testing"

	"github.com/USA-RedDragon/arm-panel/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"pgregory.net/rapid"
)

func TestSessionJWTRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		secret := rapid.StringN(1, 64, -1).Draw(t, "secret")
		sessionID := rapid.StringMatching(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`).Draw(t, "sessionID")

		token, err := utils.GenerateSessionJWT(secret, sessionID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := utils.VerifySessionJWT(secret, token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != sessionID {
			t.Fatalf("expected %s, got %s", sessionID, got)
		}
	})
}

func TestSessionJWTWrongSecret(t *testing.T) {
	t.Parallel()
	token, err := utils.GenerateSessionJWT("secret", "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := utils.VerifySessionJWT("other", token); !errors.Is(err, utils.ErrInvalidSessionToken) {
		t.Fatalf("expected an invalid token error, got %v", err)
	}
}

func TestSessionJWTRejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "abc"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := utils.VerifySessionJWT("secret", token); !errors.Is(err, utils.ErrInvalidSessionToken) {
		t.Fatalf("expected an unsigned token to be rejected, got %v", err)
	}
}

func TestSessionJWTRequiresSubject(t *testing.T) {
	t.Parallel()
	token, err := utils.GenerateSessionJWT("secret", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := utils.VerifySessionJWT("secret", token); !errors.Is(err, utils.ErrInvalidSessionToken) {
		t.Fatalf("expected a token without a session to be rejected, got %v", err)
	}
}
