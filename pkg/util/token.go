package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns a hex-encoded random string of n bytes. Used for
// the single-use verification tokens mailed out on registration
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
