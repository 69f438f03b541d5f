// Package auth issues and verifies operator bearer tokens for the admin
// API.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hostsuite/resellerd/internal/config"
)

// Sentinel errors for operator authentication.
var (
	// ErrInvalidCredentials indicates a failed operator login.
	ErrInvalidCredentials = errors.New("invalid operator credentials")
	// ErrInvalidToken indicates a missing, malformed, or expired token.
	ErrInvalidToken = errors.New("invalid token")
)

// VerifyOperator checks an operator login against the configured username
// and bcrypt password hash.
func VerifyOperator(cfg config.OperatorConfig, username, password string) error {
	if strings.TrimSpace(cfg.Username) == "" || strings.TrimSpace(cfg.PasswordHash) == "" {
		return ErrInvalidCredentials
	}
	if username != cfg.Username {
		return ErrInvalidCredentials
	}
	if errCompare := bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash), []byte(password)); errCompare != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IssueToken signs a bearer token for the operator.
func IssueToken(cfg config.JWTConfig, username string) (string, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return "", fmt.Errorf("auth: jwt secret is not configured")
	}
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(cfg.Expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, errSign := token.SignedString([]byte(cfg.Secret))
	if errSign != nil {
		return "", fmt.Errorf("auth: sign token: %w", errSign)
	}
	return signed, nil
}

// VerifyToken validates a bearer token and returns the subject.
func VerifyToken(cfg config.JWTConfig, tokenString string) (string, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return "", ErrInvalidToken
	}
	parsed, errParse := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if errParse != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
