package identity

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrNotInternalUser    = errors.New("user record is not an internal user record")
	ErrInvalidUserRef     = errors.New("user reference must be a valid email address or user id")
)

// ErrUserAlreadyExists is returned when attempting to create an internal user
// with an email that already has an internal user record.
type ErrUserAlreadyExists struct {
	Email string
}

func (e ErrUserAlreadyExists) Error() string {
	return fmt.Sprintf("an user with email: %s already exists", e.Email)
}
