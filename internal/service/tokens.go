package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issueAccessToken signs the given claim set with HS256, stamping a fresh
// expiration plus the configured issuer and audience. Login passes a single
// email claim; refresh passes everything recovered from the expired token.
func (s *AuthService) issueAccessToken(claims jwt.MapClaims) (string, time.Time, error) {
	expiresAt := time.Now().Add(accessTokenTTL)
	claims["exp"] = expiresAt.Unix()
	claims["iss"] = s.Tokens.Issuer
	claims["aud"] = s.Tokens.Audience

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Tokens.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// parseExpiredToken verifies the signature and the alg header only. Lifetime,
// issuer and audience are deliberately not checked: an expired token is valid
// proof of prior authentication here.
func (s *AuthService) parseExpiredToken(raw string) (jwt.MapClaims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Tokens.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	alg, _ := token.Header["alg"].(string)
	if !strings.EqualFold(alg, jwt.SigningMethodHS256.Alg()) {
		return nil, fmt.Errorf("unexpected alg header: %q", alg)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("cannot parse claims")
	}
	return claims, nil
}

// NewRefreshToken returns 32 bytes from a CSPRNG, base64-encoded (44 chars).
func NewRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
