package provision

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// passwordAlphabet draws from upper/lower/digit classes with visually similar
// characters (i, l, I, L, o, O, 0, 1) excluded, so a generated password can be
// read back to an operator unambiguously.
const passwordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GeneratePassword generates a random password of the given length from a
// cryptographically adequate random source.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("password length must be positive")
	}

	max := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
