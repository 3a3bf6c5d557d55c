package controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// authClaims: "sub" carrega o id do usuário.
type authClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func getJWTSecret() []byte {
	if conf.Security.JwtSecret == "" {
		return []byte("CHANGE_ME")
	}
	return []byte(conf.Security.JwtSecret)
}

func tokenTTL() time.Duration {
	if conf.Security.AccessTokenTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(conf.Security.AccessTokenTTLMinutes) * time.Minute
}

func issueToken(userID int64, email string) (string, error) {
	now := time.Now()
	claims := authClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL())),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(getJWTSecret())
}

// parseToken valida assinatura e expiração e devolve o id do usuário.
func parseToken(token string) (int64, error) {
	var claims authClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return getJWTSecret(), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	return id, nil
}
