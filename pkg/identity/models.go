package identity

import (
	"time"

	"github.com/google/uuid"
)

// SourceInternal marks user records whose credentials are managed by this
// service directly, as opposed to records owned by federated identity
// providers.
const SourceInternal = "internal"

// Well-known role ids seeded by the platform. Every internal user gets the
// standard user role at creation time; admin users additionally get the admin
// role.
var (
	RoleStandardUser = uuid.MustParse("00000000-0000-0002-0000-000000000000")
	RoleAdmin        = uuid.MustParse("00000000-0000-0003-0000-000000000000")
)

// User represents an identity record in the users table.
type User struct {
	ID          uuid.UUID
	DisplayName string
	Email       string
	Source      string
	SourceID    string
}

// Credential holds a user's current password hash. At most one credential row
// exists per user; resets update the row in place.
type Credential struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Hash      string
	Timestamp time.Time
}

// CreateUserParams holds the attributes for a new user row.
type CreateUserParams struct {
	DisplayName string
	Email       string
	Source      string
	SourceID    string
}
