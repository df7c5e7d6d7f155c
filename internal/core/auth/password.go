package auth

import (
	"crypto/rand"
	"math/big"
	"slices"
	"strings"
)

const (
	resetTokenLength = 32
	resetTokenChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// commonPasswords is a short deny-list of passwords too common to allow.
var commonPasswords = []string{
	"password", "password1", "password123", "passw0rd",
	"12345678", "123456789", "1234567890",
	"qwerty123", "qwertyuiop",
	"iloveyou", "sunshine", "princess",
	"football", "baseball",
	"welcome1", "admin123", "letmein1", "abc12345",
	"changeme", "trustno1",
}

// IsCommonPassword reports whether the password is on the deny-list.
func IsCommonPassword(password string) bool {
	return slices.Contains(commonPasswords, strings.ToLower(password))
}

// GenerateResetToken returns a random alphanumeric single-use token.
func GenerateResetToken() (string, error) {
	var b strings.Builder
	b.Grow(resetTokenLength)

	alphabetLen := big.NewInt(int64(len(resetTokenChars)))
	for range resetTokenLength {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		b.WriteByte(resetTokenChars[n.Int64()])
	}

	return b.String(), nil
}
