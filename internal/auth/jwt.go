package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rogerio-castellano/pixel-canvas/internal/models"
)

var ErrInvalidToken = errors.New("invalid session token")

// Claims carries the session identity. Subject holds the user id and ID the
// token id used for revocation. Remember marks a persistent session so a
// reissued token keeps its lifetime.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Remember bool   `json:"remember,omitempty"`
}

// UserID returns the numeric subject.
func (c *Claims) UserID() int {
	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return 0
	}
	return id
}

// GenerateToken signs a session token for user valid until now+ttl.
func GenerateToken(user models.User, secret []byte, now time.Time, ttl time.Duration, remember bool) (string, *Claims, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: user.Username,
		Remember: remember,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ParseToken verifies the signature and expiry of tokenStr.
func ParseToken(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID() <= 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
