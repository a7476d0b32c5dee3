package identity

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

// IsEmail reports whether the input is a plain, syntactically valid email
// address (no display name, no angle brackets).
func IsEmail(input string) bool {
	if input == "" {
		return false
	}
	addr, err := mail.ParseAddress(input)
	return err == nil && addr.Address == input
}

// ResolveUserID locates exactly one internal-source user from an email address
// or a user id.
//
// A valid email resolves through the unique internal user with that email. A
// valid uuid resolves through the user record directly; the record must be an
// internal-source record. Anything else fails with ErrInvalidUserRef. The
// resolution is read-only.
func ResolveUserID(ctx context.Context, repo Repository, userRef string) (uuid.UUID, error) {
	ref := strings.TrimSpace(userRef)

	if IsEmail(ref) {
		user, err := repo.FindInternalUserByEmail(ctx, ref)
		if err != nil {
			return uuid.Nil, err
		}
		return user.ID, nil
	}

	if id, err := uuid.Parse(ref); err == nil {
		user, err := repo.GetUserByID(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		if user.Source != SourceInternal {
			return uuid.Nil, ErrNotInternalUser
		}
		return user.ID, nil
	}

	return uuid.Nil, ErrInvalidUserRef
}
