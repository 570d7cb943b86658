package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims is the session token payload.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for userID.
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := t.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies the signature and expiry of token and returns its claims.
func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// IsExpired reports whether err came from an expired token.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
