package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

var (
	ErrTokenInvalid = errors.New("session token is invalid")
	ErrTokenExpired = errors.New("session token has expired")
)

// MintSessionToken signs a short-lived HS256 token carrying the user's ID.
// The expiry lives inside the token, the stored copy on the user record is
// what gets cleared on logout
func MintSessionToken(userID string) (string, error) {
	expiry := time.Duration(viper.GetInt("jwt.expiry_minutes")) * time.Minute

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(expiry).Unix(),
	})

	return t.SignedString([]byte(viper.GetString("jwt.secret")))
}

// ParseSessionToken verifies the signature and expiry of a bearer token
// and returns the user ID it was minted for
func ParseSessionToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return []byte(viper.GetString("jwt.secret")), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}

		return "", ErrTokenInvalid
	}

	if !token.Valid {
		return "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrTokenInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrTokenInvalid
	}

	if _, ok := claims["exp"]; !ok {
		// Tokens without an expiry are never honored
		return "", ErrTokenExpired
	}

	return userID, nil
}
