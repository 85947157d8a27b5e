package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// JWTValidator verifies bearer tokens and extracts the subject user id.
// Supports HS256 (shared secret) and RS256 (public key file).
type JWTValidator struct {
	publicKey *rsa.PublicKey
	hsSecret  []byte
}

func NewJWTValidatorHS256(secret string) (*JWTValidator, error) {
	if secret == "" {
		return nil, errors.New("empty HS256 secret")
	}
	return &JWTValidator{hsSecret: []byte(secret)}, nil
}

func NewJWTValidatorRS256(pubPath string) (*JWTValidator, error) {
	b, err := os.ReadFile(pubPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, errors.New("invalid public PEM")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("not an RSA public key")
	}
	return &JWTValidator{publicKey: rsaPub}, nil
}

// Validate returns the subject (user id) on success.
func (j *JWTValidator) Validate(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", errors.New("empty token")
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		switch t.Method.Alg() {
		case jwt.SigningMethodHS256.Alg():
			if j.hsSecret == nil {
				return nil, errors.New("HS256 not configured")
			}
			return j.hsSecret, nil
		case jwt.SigningMethodRS256.Alg():
			if j.publicKey == nil {
				return nil, errors.New("RS256 not configured")
			}
			return j.publicKey, nil
		default:
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}
	// fallback claim used by older tokens
	if uid, ok := claims["user_id"].(string); ok && uid != "" {
		return uid, nil
	}
	return "", errors.New("sub claim missing")
}
