package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"uk.co.dudmesh.tether/internal/model"
)

var ErrorInvalidToken = errors.New("invalid token")

// Tokens identify the acting user on HTTP calls: plain HS256 bearer
// tokens issued at registration.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: 30 * 24 * time.Hour}
}

func (t *Tokens) Issue(userID model.UserID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": string(userID),
		"exp": time.Now().Add(t.ttl).Unix(),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) Parse(raw string) (model.UserID, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrorInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrorInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrorInvalidToken
	}
	return model.UserID(sub), nil
}
