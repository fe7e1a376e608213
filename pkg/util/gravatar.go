package util

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL derives the default avatar for a fresh account from its
// email address. Same email, same picture, no upload needed. The retro
// fallback makes sure even unknown addresses get a generated image
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=100&r=x&d=retro", sum)
}
