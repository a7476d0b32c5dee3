package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/local-auth/pkg/identity"
	"github.com/tendant/local-auth/pkg/login"
)

// Options carries the tunable policy values of the provisioning workflow.
// They are explicit fields rather than package constants so deployments and
// tests can override them.
type Options struct {
	DefaultCostFactor       int
	MinCostFactor           int
	MinPasswordLength       int
	GeneratedPasswordLength int
}

// DefaultOptions returns the production policy defaults
func DefaultOptions() Options {
	return Options{
		DefaultCostFactor:       12,
		MinCostFactor:           10,
		MinPasswordLength:       6,
		GeneratedPasswordLength: 8,
	}
}

// TxBeginner starts database transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Params selects the target user and the password options for SetPassword.
// Exactly one of User (existing user, email or id) or Create (new user email)
// must be set.
type Params struct {
	// User references an existing user by email or id
	User string

	// Create requests creation of a new internal user with this email
	Create string

	// DisplayName is used when creating; defaults to the email
	DisplayName string

	// IsAdmin additionally assigns the admin role when creating
	IsAdmin bool

	// Password is the explicit password; when empty a random one is generated
	Password string

	// CostFactor overrides the default hash cost when non-nil. A pointer so
	// that an explicit invalid value like 0 is distinguishable from the flag
	// being absent, and gets rejected instead of silently defaulted.
	CostFactor *int
}

// Result is the outcome of a successful SetPassword call. Password is the
// plaintext, returned exactly once so the operator can communicate it to the
// end user; it is never persisted.
type Result struct {
	UserID   uuid.UUID
	Password string
}

// Service implements the administrative provisioning workflow: resolve or
// create a user, validate or generate a password, hash it, and upsert the
// credential row, all inside a single transaction.
type Service struct {
	repo    identity.Repository
	hasher  login.PasswordHasher
	db      TxBeginner
	options Options
}

// NewService creates a new provisioning service
func NewService(repo identity.Repository, hasher login.PasswordHasher, options Options) *Service {
	if hasher == nil {
		hasher = login.BcryptHasher{}
	}
	return &Service{
		repo:    repo,
		hasher:  hasher,
		options: options,
	}
}

// WithTxBeginner makes the service wrap each SetPassword call in a
// transaction started from db. Without it the repository is used as-is, which
// is only suitable for the in-memory implementation.
func (s *Service) WithTxBeginner(db TxBeginner) *Service {
	s.db = db
	return s
}

// SetPassword runs the provisioning workflow. Validation failures are
// reported before any transaction is opened; once open, any error rolls back
// the entire transaction, so partial user/role/credential creation is never
// observable.
func (s *Service) SetPassword(ctx context.Context, params Params) (Result, error) {
	if params.User == "" && params.Create == "" {
		return Result{}, errors.New("either an existing user reference or a create request is required")
	}

	cost := s.options.DefaultCostFactor
	if params.CostFactor != nil {
		if *params.CostFactor < s.options.MinCostFactor {
			return Result{}, ErrInvalidCostFactor{MinCostFactor: s.options.MinCostFactor}
		}
		cost = *params.CostFactor
	}

	password := params.Password
	if password != "" {
		// the minimum is a character count, not a byte count
		if utf8.RuneCountInString(password) < s.options.MinPasswordLength {
			return Result{}, ErrPasswordTooShort{MinLength: s.options.MinPasswordLength}
		}
	} else {
		generated, err := GeneratePassword(s.options.GeneratedPasswordLength)
		if err != nil {
			return Result{}, err
		}
		password = generated
	}

	repo := s.repo
	var tx pgx.Tx
	if s.db != nil {
		var err error
		tx, err = s.db.Begin(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("failed to begin transaction: %w", err)
		}
		// no-op once the transaction is committed
		defer tx.Rollback(ctx)
		repo = repo.WithTx(tx)
	}

	userID, err := s.resolveUser(ctx, repo, params)
	if err != nil {
		return Result{}, err
	}

	hash, err := s.hasher.Hash(password, cost)
	if err != nil {
		return Result{}, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := upsertCredential(ctx, repo, userID, hash); err != nil {
		return Result{}, err
	}

	if tx != nil {
		if err := tx.Commit(ctx); err != nil {
			return Result{}, fmt.Errorf("failed to commit transaction: %w", err)
		}
	}

	slog.Info("Password set", "userId", userID)
	return Result{UserID: userID, Password: password}, nil
}

// resolveUser returns the target user id, creating the user (with its role
// assignments) when params.Create is set.
func (s *Service) resolveUser(ctx context.Context, repo identity.Repository, params Params) (uuid.UUID, error) {
	if params.User != "" {
		return identity.ResolveUserID(ctx, repo, params.User)
	}

	email := strings.TrimSpace(params.Create)
	if !identity.IsEmail(email) {
		return uuid.Nil, ErrInvalidEmail
	}

	// The pre-check gives the common case a clean error; the unique index on
	// (email, source) is the authoritative guard and CreateUser maps its
	// violation to the same ErrUserAlreadyExists.
	_, err := repo.FindInternalUserByEmail(ctx, email)
	if err == nil {
		return uuid.Nil, identity.ErrUserAlreadyExists{Email: email}
	}
	if !errors.Is(err, identity.ErrUserNotFound) {
		return uuid.Nil, err
	}

	displayName := params.DisplayName
	if displayName == "" {
		displayName = email
	}

	user, err := repo.CreateUser(ctx, identity.CreateUserParams{
		DisplayName: displayName,
		Email:       email,
		Source:      identity.SourceInternal,
		SourceID:    email,
	})
	if err != nil {
		return uuid.Nil, err
	}

	if err := repo.AddUserRole(ctx, user.ID, identity.RoleStandardUser); err != nil {
		return uuid.Nil, err
	}
	if params.IsAdmin {
		if err := repo.AddUserRole(ctx, user.ID, identity.RoleAdmin); err != nil {
			return uuid.Nil, err
		}
	}

	slog.Info("User created", "userId", user.ID, "email", email, "isAdmin", params.IsAdmin)
	return user.ID, nil
}

// upsertCredential inserts the first credential row for the user or updates
// the existing one in place, preserving its id.
func upsertCredential(ctx context.Context, repo identity.Repository, userID uuid.UUID, hash string) error {
	cred, err := repo.GetCredentialByUserID(ctx, userID)
	if errors.Is(err, identity.ErrCredentialNotFound) {
		return repo.CreateCredential(ctx, userID, hash)
	}
	if err != nil {
		return err
	}
	return repo.UpdateCredential(ctx, cred.ID, hash)
}
