package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/alphabot-ai/qna/internal/model"
	"github.com/alphabot-ai/qna/internal/store"
)

var (
	ErrWrongCredentials   = errors.New("wrong credentials")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrTokenCreation      = errors.New("token creation")
	ErrInvalidToken       = errors.New("invalid token")
)

// Claims is the identity carried by an access token.
type Claims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

// Keys pairs a signing method with the key material it signs and verifies
// with. For HMAC both keys are the shared secret.
type Keys struct {
	Method jwt.SigningMethod
	Sign   interface{}
	Verify interface{}
}

func HMACKeys(secret []byte) Keys {
	return Keys{Method: jwt.SigningMethodHS256, Sign: secret, Verify: secret}
}

type Service struct {
	accounts store.AccountStore
	keys     Keys
	tokenTTL time.Duration
}

func NewService(accounts store.AccountStore, keys Keys, tokenTTL time.Duration) *Service {
	return &Service{
		accounts: accounts,
		keys:     keys,
		tokenTTL: tokenTTL,
	}
}

// Login checks an email/password pair against the account store and issues a
// token for it.
func (s *Service) Login(ctx context.Context, clientID, clientSecret string) (string, error) {
	email := strings.TrimSpace(clientID)
	if email == "" || clientSecret == "" {
		return "", ErrMissingCredentials
	}
	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrWrongCredentials
		}
		return "", err
	}
	if !CheckPassword(account.Password, clientSecret) {
		return "", ErrWrongCredentials
	}
	return s.Issue(account.Email, account.ID)
}

func (s *Service) Issue(email string, accountID model.ID) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		StandardClaims: jwt.StandardClaims{
			Subject:   accountID.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(s.keys.Method, claims)
	signed, err := token.SignedString(s.keys.Sign)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenCreation, err)
	}
	return signed, nil
}

func (s *Service) Authenticate(bearer string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(bearer, &claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != s.keys.Method.Alg() {
			return nil, errors.New("invalid signing method")
		}
		return s.keys.Verify, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
