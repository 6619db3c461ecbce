package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/dgrijalva/jwt-go"

	"github.com/alphabot-ai/qna/internal/model"
	"github.com/alphabot-ai/qna/internal/store/memory"
)

func newAccountStore(t *testing.T, email, password string) *memory.Store {
	t.Helper()
	st := memory.New()
	hash, err := HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := st.CreateAccount(context.Background(), &model.Account{Email: email, Password: hash}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return st
}

func TestLoginIssuesToken(t *testing.T) {
	st := newAccountStore(t, "ann@example.com", "hunter2")
	svc := NewService(st, HMACKeys([]byte("secret")), time.Hour)

	token, err := svc.Login(context.Background(), "ann@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims.Email != "ann@example.com" {
		t.Fatalf("expected email claim, got %q", claims.Email)
	}
	if claims.Subject != "1" {
		t.Fatalf("expected subject 1, got %q", claims.Subject)
	}
	if claims.ExpiresAt <= claims.IssuedAt {
		t.Fatalf("expected expiry after issue, got iat=%d exp=%d", claims.IssuedAt, claims.ExpiresAt)
	}
}

func TestLoginTrimsEmail(t *testing.T) {
	st := newAccountStore(t, "ann@example.com", "hunter2")
	svc := NewService(st, HMACKeys([]byte("secret")), time.Hour)

	token, err := svc.Login(context.Background(), " ann@example.com\t", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims.Email != "ann@example.com" {
		t.Fatalf("expected trimmed email claim, got %q", claims.Email)
	}
}

func TestLoginErrors(t *testing.T) {
	st := newAccountStore(t, "ann@example.com", "hunter2")
	svc := NewService(st, HMACKeys([]byte("secret")), time.Hour)
	ctx := context.Background()

	cases := []struct {
		name, email, password string
		want                  error
	}{
		{"missing email", "", "hunter2", ErrMissingCredentials},
		{"blank email", "   ", "hunter2", ErrMissingCredentials},
		{"missing password", "ann@example.com", "", ErrMissingCredentials},
		{"unknown account", "bob@example.com", "hunter2", ErrWrongCredentials},
		{"bad password", "ann@example.com", "hunter3", ErrWrongCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tc.email, tc.password)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTokenExpiration(t *testing.T) {
	svc := NewService(memory.New(), HMACKeys([]byte("secret")), -1*time.Minute)

	token, err := svc.Issue("ann@example.com", 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Authenticate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestAuthenticateRejectsTampering(t *testing.T) {
	svc := NewService(memory.New(), HMACKeys([]byte("secret")), time.Hour)
	other := NewService(memory.New(), HMACKeys([]byte("other")), time.Hour)

	token, err := other.Issue("ann@example.com", 1)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	for _, bad := range []string{"", "garbage", token, token + "x"} {
		if _, err := svc.Authenticate(bad); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected invalid token for %q, got %v", bad, err)
		}
	}
}

func TestAuthenticateRejectsUnsignedTokens(t *testing.T) {
	svc := NewService(memory.New(), HMACKeys([]byte("secret")), time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Email: "ann@example.com"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.Authenticate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestES256KRoundTrip(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	svc := NewService(memory.New(), ES256KKeys(priv), time.Hour)

	token, err := svc.Issue("ann@example.com", 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !strings.HasPrefix(token, "eyJhbGciOiJFUzI1NksiLC") {
		t.Fatalf("expected ES256K header, got %q", token)
	}
	claims, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims.Subject != "7" {
		t.Fatalf("expected subject 7, got %q", claims.Subject)
	}

	otherKey, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	other := NewService(memory.New(), ES256KKeys(otherKey), time.Hour)
	if _, err := other.Authenticate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token under another key, got %v", err)
	}

	hmac := NewService(memory.New(), HMACKeys([]byte("secret")), time.Hour)
	if _, err := hmac.Authenticate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected algorithm mismatch to fail, got %v", err)
	}
}

func TestParseSecp256k1Key(t *testing.T) {
	hexKey := "0x" + strings.Repeat("11", 32)
	priv, err := ParseSecp256k1Key(hexKey)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(priv.Serialize()) != 32 {
		t.Fatalf("expected 32 byte key")
	}
	if _, err := ParseSecp256k1Key("abcd"); err == nil {
		t.Fatalf("expected short key to fail")
	}
	if _, err := ParseSecp256k1Key("zz"); err == nil {
		t.Fatalf("expected non-hex key to fail")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2" {
		t.Fatalf("expected hashed password")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "hunter3") {
		t.Fatalf("expected wrong password to fail")
	}
}
