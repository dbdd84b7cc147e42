package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/recetapp/recetapp/internal/model"
)

// DefaultTokenTTL is the fixed validity of a session token.
const DefaultTokenTTL = time.Hour

var (
	// ErrInvalidToken covers malformed tokens, bad signatures and wrong algorithms.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrEmptySecret is returned when no signing secret is configured.
	ErrEmptySecret = errors.New("token signing secret is empty")
)

// Claims is the payload of a session token.
// NumericDate only carries whole seconds, so the exact instants travel in
// iat_ns and exp_ns and the registered exp is rounded up to the second.
type Claims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	IssuedAtNano  int64  `json:"iat_ns,omitempty"`
	ExpiresAtNano int64  `json:"exp_ns,omitempty"`
}

// TokenManager issues and validates HS256 session tokens.
// Tokens are not refreshable and there is no revocation list: a token stays
// valid until it expires, whatever happens to the account meanwhile.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager. ttl <= 0 selects DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock returns a copy of m that reads time from now. Used in tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	c := *m
	c.now = now
	return &c
}

// TTL returns the validity window of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for email, valid for exactly ttl from now.
func (m *TokenManager) Issue(email string) (string, error) {
	iat := m.now().UTC()
	exp := iat.Add(m.ttl)

	wireExp := exp.Truncate(time.Second)
	if wireExp.Before(exp) {
		wireExp = wireExp.Add(time.Second)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(wireExp),
		},
		Email:         email,
		IssuedAtNano:  iat.UnixNano(),
		ExpiresAtNano: exp.UnixNano(),
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry of tokenString.
// A token is accepted up to and including its exp instant and rejected
// strictly after it.
func (m *TokenManager) Validate(tokenString string) (*model.AuthContext, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Expiry is checked below with an inclusive bound.
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.ExpiresAt == nil || claims.Email == "" {
		return nil, ErrInvalidToken
	}

	exp := claims.ExpiresAt.Time
	if claims.ExpiresAtNano != 0 {
		exp = time.Unix(0, claims.ExpiresAtNano).UTC()
	}
	if m.now().After(exp) {
		return nil, ErrTokenExpired
	}

	authCtx := &model.AuthContext{
		Email:     claims.Email,
		ExpiresAt: exp,
	}
	switch {
	case claims.IssuedAtNano != 0:
		authCtx.IssuedAt = time.Unix(0, claims.IssuedAtNano).UTC()
	case claims.IssuedAt != nil:
		authCtx.IssuedAt = claims.IssuedAt.Time
	}
	return authCtx, nil
}
