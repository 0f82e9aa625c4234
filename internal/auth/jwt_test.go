package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestVerifier(t *testing.T, secret string) *Verifier {
	t.Helper()
	v, err := NewVerifier(secret, time.Hour)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v
}

func TestIssueAndVerify(t *testing.T) {
	v := newTestVerifier(t, "test-secret-key")

	token, err := v.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID() != "user-1" {
		t.Errorf("expected subject 'user-1', got %q", claims.UserID())
	}
	if claims.ID == "" {
		t.Error("expected a JTI")
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	if _, err := NewVerifier("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestNewVerifierDefaultTTL(t *testing.T) {
	v, err := NewVerifier("s", 0)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	if v.TTL() != DefaultTokenTTL {
		t.Errorf("expected default ttl %v, got %v", DefaultTokenTTL, v.TTL())
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _ := newTestVerifier(t, "secret1").Issue("user-1")

	_, err := newTestVerifier(t, "secret2").Verify(token)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for wrong secret, got %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	v := newTestVerifier(t, "secret")

	for _, tok := range []string{"", "not-a-token", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		if _, err := v.Verify(tok); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Verify(%q): expected ErrUnauthenticated, got %v", tok, err)
		}
	}
}

func TestVerifyExpired(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	v := newTestVerifier(t, "secret").WithClock(func() time.Time { return issuedAt })

	token, err := v.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := v.Verify(token); err != nil {
		t.Fatalf("token should be valid at issue time: %v", err)
	}

	later := v.WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) })
	if _, err := later.Verify(token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for expired token, got %v", err)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	v := newTestVerifier(t, "secret")

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	// HS512 with the right secret is still refused: the algorithm is pinned.
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if _, err := v.Verify(hs512); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected HS512 token to be rejected, got %v", err)
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := v.Verify(none); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected alg=none token to be rejected, got %v", err)
	}
}

func TestVerifyRequiresExpiryAndSubject(t *testing.T) {
	v := newTestVerifier(t, "secret")

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"}).
		SignedString([]byte("secret"))
	if _, err := v.Verify(noExp); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected token without exp to be rejected, got %v", err)
	}

	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	if _, err := v.Verify(noSub); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected token without subject to be rejected, got %v", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	v := newTestVerifier(t, "test")
	token, _ := v.Issue("user-1")
	claims, _ := v.Verify(token)

	diff := time.Now().Add(time.Hour).Sub(claims.ExpiresAt.Time)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"bearer abc", "abc", false},
		{"  Bearer   abc  ", "abc", false},
		{"", "", true},
		{"Bearer", "", true},
		{"Bearer ", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
		{"abc.def.ghi", "", true},
	}

	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if tt.wantErr {
			if !errors.Is(err, ErrUnauthenticated) {
				t.Errorf("BearerToken(%q): expected ErrUnauthenticated, got %v", tt.header, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("BearerToken(%q): %v", tt.header, err)
			continue
		}
		if got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestVerifyErrorsDoNotLeakSecret(t *testing.T) {
	v := newTestVerifier(t, "very-secret-value")
	_, err := v.Verify("garbage")
	if err == nil || strings.Contains(err.Error(), "very-secret-value") {
		t.Errorf("unexpected error: %v", err)
	}
}
