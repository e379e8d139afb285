package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const supportTokenType = "support"

// TokenManager issues and checks the HS256 tokens support staff use for the
// binding lookup endpoint.
type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

func (m *TokenManager) Generate(subject string, ttl time.Duration) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("support token secret is not configured")
	}
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
		"type": supportTokenType,
	})
	return t.SignedString(m.secret)
}

// Validate returns the token subject.
func (m *TokenManager) Validate(tokenStr string) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("support token secret is not configured")
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("jwt parse: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if typ, _ := claims["type"].(string); typ != supportTokenType {
		return "", errors.New("not a support token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
