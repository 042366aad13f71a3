package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Service struct {
	secret string
	ttl    time.Duration
}

// Claims identifies the logical user behind a connection. Tokens minted by this
// service carry the id both in the registered "sub" claim and in a legacy "id"
// claim; Verify accepts either so tokens from the older identity service keep
// working.
type Claims struct {
	LegacyID int64 `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// UserID resolves the logical user id from "sub" or, failing that, "id".
// Returns 0 when neither claim is usable.
func (c *Claims) UserID() int64 {
	if c.Subject != "" {
		if id, err := strconv.ParseInt(c.Subject, 10, 64); err == nil {
			return id
		}
	}
	return c.LegacyID
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: secret, ttl: ttl}
}

func (s *Service) Sign(userID int64) (string, error) {
	claims := Claims{
		LegacyID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func (s *Service) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
