// Package auth checks the admin password, issues the admin session token and
// guards the cron trigger.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters of stored admin hashes.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// ErrBadHash is returned for a stored hash not in "hash:salt" hex form.
var ErrBadHash = errors.New("malformed password hash")

// HashPassword returns password as "hash:salt", both hex encoded.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hex.EncodeToString(key) + ":" + hex.EncodeToString(salt), nil
}

// VerifyPassword reports whether password matches a "hash:salt" value.
func VerifyPassword(password, stored string) (bool, error) {
	hashHex, saltHex, ok := strings.Cut(stored, ":")
	if !ok {
		return false, ErrBadHash
	}
	want, err := hex.DecodeString(hashHex)
	if err != nil || len(want) == 0 {
		return false, ErrBadHash
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, ErrBadHash
	}

	got, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, len(want))
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// PasswordChecker validates the admin password. A configured hash always
// wins; the plain password is only consulted when no hash is set.
type PasswordChecker struct {
	Hash  string
	Plain string
}

// Check reports whether password is the admin password. With nothing
// configured every password is rejected.
func (p PasswordChecker) Check(password string) (bool, error) {
	if password == "" {
		return false, nil
	}
	if p.Hash != "" {
		return VerifyPassword(password, p.Hash)
	}
	if p.Plain == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(p.Plain)) == 1, nil
}
