package core

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// PasswordLength is the length of auto-generated account passwords.
const PasswordLength = 12

const passwordCharset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!@#$%^&*-_=+"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// RandomPassword generates a random password of PasswordLength chars drawn
// from mixed-case letters, digits and symbols. Used for new accounts; the
// password is delivered to its owner by email, never stored in clear.
func RandomPassword() (string, error) {
	max := big.NewInt(int64(len(passwordCharset)))
	var sb strings.Builder
	sb.Grow(PasswordLength)
	for i := 0; i < PasswordLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(passwordCharset[n.Int64()])
	}
	return sb.String(), nil
}
