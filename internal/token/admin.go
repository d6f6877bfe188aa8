// Package token issues and checks short-lived admin bearer tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminSubject is the subject every admin token carries.
const AdminSubject = "wheel-admin"

var ErrNotAdmin = errors.New("token: not an admin token")

type AdminClaims struct {
	jwt.RegisteredClaims
}

// IssueAdmin signs an HS256 admin token valid for ttl.
func IssueAdmin(secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("token: empty secret")
	}
	now := time.Now()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   AdminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAdmin checks the signature, expiry and subject of tokenStr.
func VerifyAdmin(tokenStr string, secret []byte) (*AdminClaims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected token signing method")
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := tok.Claims.(*AdminClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject != AdminSubject {
		return nil, ErrNotAdmin
	}
	return claims, nil
}
