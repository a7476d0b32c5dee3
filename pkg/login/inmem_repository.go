package login

import (
	"context"
	"errors"

	"github.com/tendant/local-auth/pkg/identity"
)

// InMemoryRepository implements Repository on top of the in-memory identity
// store, so tests can provision users and credentials and log in against the
// same state.
type InMemoryRepository struct {
	store *identity.InMemoryRepository
}

// NewInMemoryRepository creates a new in-memory login repository backed by the
// given identity store
func NewInMemoryRepository(store *identity.InMemoryRepository) *InMemoryRepository {
	return &InMemoryRepository{store: store}
}

// FindCredentialByEmail looks up the internal user and its credential, if any
func (r *InMemoryRepository) FindCredentialByEmail(ctx context.Context, email string) (CredentialLookup, error) {
	user, err := r.store.FindInternalUserByEmail(ctx, email)
	if errors.Is(err, identity.ErrUserNotFound) {
		return CredentialLookup{}, ErrLoginNotFound
	}
	if err != nil {
		return CredentialLookup{}, err
	}

	cred, err := r.store.GetCredentialByUserID(ctx, user.ID)
	if errors.Is(err, identity.ErrCredentialNotFound) {
		return CredentialLookup{UserID: user.ID}, nil
	}
	if err != nil {
		return CredentialLookup{}, err
	}

	return CredentialLookup{UserID: user.ID, Hash: cred.Hash, HashValid: true}, nil
}
