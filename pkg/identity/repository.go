package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database connection pool
// or a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository defines the data access operations over the users, credentials
// and user_roles tables. Implementations carry no business logic.
type Repository interface {
	FindInternalUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	AddUserRole(ctx context.Context, userID, roleID uuid.UUID) error

	GetCredentialByUserID(ctx context.Context, userID uuid.UUID) (Credential, error)
	CreateCredential(ctx context.Context, userID uuid.UUID, hash string) error
	UpdateCredential(ctx context.Context, id uuid.UUID, hash string) error

	// WithTx returns a repository bound to the given transaction.
	WithTx(tx pgx.Tx) Repository
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL identity repository
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindInternalUserByEmail finds the unique internal-source user with the given email
func (r *PostgresRepository) FindInternalUserByEmail(ctx context.Context, email string) (User, error) {
	query := `
		SELECT "id", "displayName", "email", "source", "sourceId"
		FROM "users"
		WHERE "email" = $1 AND "source" = 'internal'
		LIMIT 1
	`

	var user User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.Source,
		&user.SourceID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// GetUserByID gets a user by id regardless of source
func (r *PostgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	query := `
		SELECT "id", "displayName", "email", "source", "sourceId"
		FROM "users"
		WHERE "id" = $1
		LIMIT 1
	`

	var user User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.Source,
		&user.SourceID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// CreateUser creates a new user row. A unique violation on (email, source) is
// mapped to ErrUserAlreadyExists so the constraint acts as the authoritative
// guard against concurrent creates.
func (r *PostgresRepository) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	query := `
		INSERT INTO "users" ("id", "displayName", "email", "source", "sourceId")
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING "id"
	`

	user := User{
		DisplayName: arg.DisplayName,
		Email:       arg.Email,
		Source:      arg.Source,
		SourceID:    arg.SourceID,
	}
	err := r.db.QueryRow(ctx, query, arg.DisplayName, arg.Email, arg.Source, arg.SourceID).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return User{}, ErrUserAlreadyExists{Email: arg.Email}
		}
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// AddUserRole links a user to a role
func (r *PostgresRepository) AddUserRole(ctx context.Context, userID, roleID uuid.UUID) error {
	query := `
		INSERT INTO "user_roles" ("id", "user_id", "role_id")
		VALUES (gen_random_uuid(), $1, $2)
	`

	_, err := r.db.Exec(ctx, query, userID, roleID)
	if err != nil {
		return fmt.Errorf("failed to add role %s to user %s: %w", roleID, userID, err)
	}
	return nil
}

// GetCredentialByUserID gets the credential row for a user
func (r *PostgresRepository) GetCredentialByUserID(ctx context.Context, userID uuid.UUID) (Credential, error) {
	query := `
		SELECT "id", "user_id", "hash", "timestamp"
		FROM "credentials"
		WHERE "user_id" = $1
		LIMIT 1
	`

	var cred Credential
	var hash sql.NullString
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&cred.ID,
		&cred.UserID,
		&hash,
		&cred.Timestamp,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Credential{}, ErrCredentialNotFound
	}
	if err != nil {
		return Credential{}, fmt.Errorf("failed to get credential for user %s: %w", userID, err)
	}
	cred.Hash = hash.String
	return cred, nil
}

// CreateCredential inserts the first credential row for a user
func (r *PostgresRepository) CreateCredential(ctx context.Context, userID uuid.UUID, hash string) error {
	query := `
		INSERT INTO "credentials" ("id", "user_id", "timestamp", "hash")
		VALUES (gen_random_uuid(), $1, CURRENT_TIMESTAMP, $2)
	`

	_, err := r.db.Exec(ctx, query, userID, hash)
	if err != nil {
		return fmt.Errorf("failed to create credential for user %s: %w", userID, err)
	}
	return nil
}

// UpdateCredential overwrites the hash and timestamp of an existing credential
// row, preserving its id. The single statement keeps concurrent logins from
// ever observing a partial write.
func (r *PostgresRepository) UpdateCredential(ctx context.Context, id uuid.UUID, hash string) error {
	query := `
		UPDATE "credentials" SET "hash" = $1, "timestamp" = CURRENT_TIMESTAMP WHERE "id" = $2
	`

	_, err := r.db.Exec(ctx, query, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update credential %s: %w", id, err)
	}
	return nil
}

// WithTx returns a repository bound to the given transaction
func (r *PostgresRepository) WithTx(tx pgx.Tx) Repository {
	if tx == nil {
		return r
	}
	return &PostgresRepository{db: tx}
}
