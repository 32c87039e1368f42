package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"recipepic.dev/recipe-pic-gen/internal/config"
)

// VaultAccessTTL is how long a successful vault login stays valid.
const VaultAccessTTL = 30 * 24 * time.Hour

// GenerateAccessToken mints the signed token stored in the vault cookie.
func GenerateAccessToken() (string, error) {
	claims := jwt.MapClaims{
		"sub": "vault",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(VaultAccessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.SessionSecret))
}

// ValidateAccessToken checks the signature and expiry of a vault cookie
// token.
func ValidateAccessToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.SessionSecret), nil
	})

	if err != nil {
		return err
	}

	if !token.Valid {
		return fmt.Errorf("invalid token")
	}

	return nil
}
