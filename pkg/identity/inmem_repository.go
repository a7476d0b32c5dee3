package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]User
	credentials map[uuid.UUID]Credential // keyed by credential id
	userRoles   map[uuid.UUID][]uuid.UUID
}

// NewInMemoryRepository creates a new in-memory identity repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:       make(map[uuid.UUID]User),
		credentials: make(map[uuid.UUID]Credential),
		userRoles:   make(map[uuid.UUID][]uuid.UUID),
	}
}

// FindInternalUserByEmail finds the unique internal-source user with the given email
func (r *InMemoryRepository) FindInternalUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email && user.Source == SourceInternal {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

// GetUserByID gets a user by id regardless of source
func (r *InMemoryRepository) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

// CreateUser creates a new user
func (r *InMemoryRepository) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == arg.Email && user.Source == arg.Source {
			return User{}, ErrUserAlreadyExists{Email: arg.Email}
		}
	}

	user := User{
		ID:          uuid.New(),
		DisplayName: arg.DisplayName,
		Email:       arg.Email,
		Source:      arg.Source,
		SourceID:    arg.SourceID,
	}
	r.users[user.ID] = user
	return user, nil
}

// AddUserRole links a user to a role
func (r *InMemoryRepository) AddUserRole(ctx context.Context, userID, roleID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.userRoles[userID] = append(r.userRoles[userID], roleID)
	return nil
}

// UserRoles returns the role ids assigned to a user. Test helper; not part of
// the Repository interface.
func (r *InMemoryRepository) UserRoles(userID uuid.UUID) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := make([]uuid.UUID, len(r.userRoles[userID]))
	copy(roles, r.userRoles[userID])
	return roles
}

// GetCredentialByUserID gets the credential row for a user
func (r *InMemoryRepository) GetCredentialByUserID(ctx context.Context, userID uuid.UUID) (Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cred := range r.credentials {
		if cred.UserID == userID {
			return cred, nil
		}
	}
	return Credential{}, ErrCredentialNotFound
}

// CreateCredential inserts the first credential row for a user
func (r *InMemoryRepository) CreateCredential(ctx context.Context, userID uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cred := Credential{
		ID:        uuid.New(),
		UserID:    userID,
		Hash:      hash,
		Timestamp: time.Now().UTC(),
	}
	r.credentials[cred.ID] = cred
	return nil
}

// UpdateCredential overwrites the hash and timestamp of an existing credential row
func (r *InMemoryRepository) UpdateCredential(ctx context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cred, ok := r.credentials[id]
	if !ok {
		return ErrCredentialNotFound
	}
	cred.Hash = hash
	cred.Timestamp = time.Now().UTC()
	r.credentials[id] = cred
	return nil
}

// WithTx returns the repository itself; the in-memory implementation has no
// transaction support.
func (r *InMemoryRepository) WithTx(tx pgx.Tx) Repository {
	return r
}
