package login

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher defines the interface for password hashing implementations.
// The cost parameter is the work factor of the underlying slow-hash primitive.
type PasswordHasher interface {
	// Hash hashes a password at the given cost
	Hash(password string, cost int) (string, error)

	// Verify checks if the provided password matches the stored hash
	Verify(password, hashedPassword string) (bool, error)
}

// BcryptHasher implements PasswordHasher using bcrypt. The cost is encoded in
// the produced hash, so Verify needs no cost parameter.
type BcryptHasher struct{}

// Hash implements PasswordHasher.Hash
func (h BcryptHasher) Hash(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// Verify implements PasswordHasher.Verify. The comparison is constant-time.
func (h BcryptHasher) Verify(password, hashedPassword string) (bool, error) {
	if password == "" || hashedPassword == "" {
		return false, errors.New("password and hashed password cannot be empty")
	}

	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			// a mismatch is a verification result, not a failure
			return false, nil
		}
		return false, err
	}

	return true, nil
}
