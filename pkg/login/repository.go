package login

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CredentialLookup is the result of the login query: the internal user id and,
// when a credential row exists, its hash. HashValid is false when the user has
// no credential row yet (left join).
type CredentialLookup struct {
	UserID    uuid.UUID
	Hash      string
	HashValid bool
}

// Repository defines the read-only data access needed by the verification
// engine.
type Repository interface {
	FindCredentialByEmail(ctx context.Context, email string) (CredentialLookup, error)
}

// DBTX is an interface that allows us to use either a database connection pool
// or a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL login repository
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindCredentialByEmail looks up the internal-source user with the given email
// joined with its credential row. A user may exist without a credential.
func (r *PostgresRepository) FindCredentialByEmail(ctx context.Context, email string) (CredentialLookup, error) {
	query := `
		SELECT "u"."id", "c"."hash"
		FROM "users" "u"
		LEFT JOIN "credentials" "c" ON "c"."user_id" = "u"."id"
		WHERE "u"."email" = $1 AND "u"."source" = 'internal'
		LIMIT 1
	`

	var lookup CredentialLookup
	var hash sql.NullString
	err := r.db.QueryRow(ctx, query, email).Scan(&lookup.UserID, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return CredentialLookup{}, ErrLoginNotFound
	}
	if err != nil {
		return CredentialLookup{}, fmt.Errorf("failed to query credentials: %w", err)
	}
	lookup.Hash = hash.String
	lookup.HashValid = hash.Valid
	return lookup, nil
}
