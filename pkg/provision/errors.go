package provision

import (
	"errors"
	"fmt"
)

// ErrInvalidEmail is returned when a create request carries a malformed email
// address. Checked before any store access.
var ErrInvalidEmail = errors.New("supplied email address is invalid")

// ErrPasswordTooShort is returned when an explicit password is below the
// configured minimum length
type ErrPasswordTooShort struct {
	MinLength int
}

func (e ErrPasswordTooShort) Error() string {
	return fmt.Sprintf("password length cannot be smaller than %d", e.MinLength)
}

// ErrInvalidCostFactor is returned when a caller-supplied cost factor is below
// the policy floor. Lower factors weaken security; there is no upper bound,
// but cost grows exponentially with the factor.
type ErrInvalidCostFactor struct {
	MinCostFactor int
}

func (e ErrInvalidCostFactor) Error() string {
	return fmt.Sprintf("cost factor must be a number >= %d", e.MinCostFactor)
}
