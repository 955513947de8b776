package service

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher derives and verifies bcrypt credential hashes. Every call
// to Hash embeds a fresh random salt, so hashes are never copied between
// accounts.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcrypt.DefaultCost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Compare reports whether password matches hash. Malformed or empty hashes
// never match.
func (h *PasswordHasher) Compare(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
