// Package password wraps bcrypt hashing so handlers never touch the
// hash format directly.
package password

import "golang.org/x/crypto/bcrypt"

// Cost matches bcrypt's default work factor of 10 rounds.
const Cost = bcrypt.DefaultCost

// Hash derives a salted one-way hash. The salt is random per call, so
// hashing the same plaintext twice yields different strings.
func Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. It is the only supported
// equality test for stored passwords.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
