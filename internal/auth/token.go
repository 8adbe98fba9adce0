// Package auth issues and verifies the HS256 tokens that identify users.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "tutorchat-service"

	PurposeSession      = "session"
	PurposeTelegramLink = "telegram_link"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Tokens signs and verifies tokens with a shared secret.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue генерує JWT для користувача з указаним призначенням
func (t *Tokens) Issue(userID, purpose string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"purpose": purpose,
		"iat":     t.now().Unix(),
		"exp":     t.now().Add(ttl).Unix(),
		"iss":     issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies tokenString and returns the user id it carries. Session tokens
// may come from the web app without a purpose claim; any other purpose must match.
func (t *Tokens) Parse(tokenString, purpose string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	got, _ := claims["purpose"].(string)
	if got == "" {
		got = PurposeSession
	}
	if got != purpose {
		return "", ErrInvalidToken
	}

	if id, _ := claims["user_id"].(string); id != "" {
		return id, nil
	}
	if sub, _ := claims["sub"].(string); sub != "" {
		return sub, nil
	}
	return "", ErrInvalidToken
}
