package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func SignAccessToken(userID uint, username, role string, superuser bool, secret []byte, ttl time.Duration) (string, time.Time, error) {
	claims := AccessClaims{
		Username:         username,
		Role:             role,
		Superuser:        superuser,
		Type:             TypeAccess,
		RegisteredClaims: newRegistered(userID, ttl),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, claims.ExpiresAt.Time, nil
}

func AccessClaimsFromToken(tokenStr string, accessSecret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return accessSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.Type != TypeAccess {
		return nil, ErrWrongTokenType
	}
	return &claims, nil
}
