package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash of a password. A cost below the
// bcrypt minimum (e.g. an unset config value) falls back to the library
// default instead of producing a trivially crackable hash.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash against a plain password in
// constant time.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
