package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// timingSentinelHash is a well-formed bcrypt digest used to equalize timing
// when no credential exists for the attempted login. The comparison result is
// never honored on that path.
const timingSentinelHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Service is the verification engine: the sole authority the surrounding
// authentication framework consults for local credential checks. It is
// side-effect free besides the read query.
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

// NewService creates a new verification service
func NewService(repo Repository, hasher PasswordHasher) *Service {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &Service{
		repo:   repo,
		hasher: hasher,
	}
}

// VerifyCredentials answers "does this username/password pair authenticate?".
// On success it returns the authenticated user id. Rejections are
// ErrBadRequest or ErrUnauthorized; unexpected store/hasher failures come back
// wrapped in ErrSystem.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) (uuid.UUID, error) {
	if username == "" {
		return uuid.Nil, fmt.Errorf("%w: username cannot be empty", ErrBadRequest)
	}

	lookup, err := s.repo.FindCredentialByEmail(ctx, username)
	if errors.Is(err, ErrLoginNotFound) {
		slog.Info("Failed to authenticate user: cannot locate user record", "username", username)
		// run a comparison anyway so this path is not distinguishable from a
		// wrong password by timing
		s.hasher.Verify(timingSentinelHash, timingSentinelHash)
		return uuid.Nil, ErrUnauthorized
	}
	if err != nil {
		slog.Error("Error when authenticating user", "username", username, "err", err)
		return uuid.Nil, fmt.Errorf("%w: %w", ErrSystem, err)
	}

	if !lookup.HashValid || password == "" {
		slog.Info("Failed to authenticate user: no usable credential", "username", username)
		s.hasher.Verify(timingSentinelHash, timingSentinelHash)
		return uuid.Nil, ErrUnauthorized
	}

	match, err := s.hasher.Verify(password, lookup.Hash)
	if err != nil {
		slog.Error("Error when checking password hash", "username", username, "err", err)
		return uuid.Nil, fmt.Errorf("%w: %w", ErrSystem, err)
	}
	if !match {
		slog.Info("Failed to authenticate user: incorrect password", "username", username)
		return uuid.Nil, ErrUnauthorized
	}

	return lookup.UserID, nil
}
