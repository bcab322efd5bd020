package service

import (
	"errors"
	"unicode"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 256
)

var (
	ErrInvalidCharacter  = errors.New("invalid characters found in username or password")
	ErrBadPasswordLength = errors.New("password length not match the requirement: only length in the range 8-256 is acceptable")
)

// Credentials is a transient value holding validated login input. It is
// never persisted; the password is discarded right after hashing or
// verification.
type Credentials struct {
	Username string
	Password string
}

// ParseCredentials rejects malformed input before any storage or
// cryptographic work happens. Both fields must be ASCII-only and the
// password length must fall in [8, 256] bytes.
func ParseCredentials(username, password string) (Credentials, error) {
	if !isASCII(username) || !isASCII(password) {
		return Credentials{}, ErrInvalidCharacter
	}

	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return Credentials{}, ErrBadPasswordLength
	}

	return Credentials{Username: username, Password: password}, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}
