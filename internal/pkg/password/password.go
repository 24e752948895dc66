package password

import "golang.org/x/crypto/bcrypt"

// Check compares a presented plaintext password against the stored bcrypt
// hash. Constant-time comparison semantics come from bcrypt itself; no extra
// timing-safe layer is stacked on top.
func Check(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
