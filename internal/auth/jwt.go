package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 30 * 24 * time.Hour

var errBadClaims = errors.New("token has no user_id claim")

func GenerateToken(secret []byte, userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(tokenTTL).Unix(),
		"iat":     now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func ParseToken(secret []byte, tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return 0, errors.New("invalid token")
	}

	data, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errBadClaims
	}
	uidFloat, ok := data["user_id"].(float64)
	if !ok {
		return 0, errBadClaims
	}
	return int64(uidFloat), nil
}
