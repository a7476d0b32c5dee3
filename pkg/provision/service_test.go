package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/local-auth/pkg/identity"
	"github.com/tendant/local-auth/pkg/login"
	"golang.org/x/crypto/bcrypt"
)

func costOf(v int) *int {
	return &v
}

// test options keep the cost floor but hash at the cheapest allowed cost
func testOptions() Options {
	return Options{
		DefaultCostFactor:       10,
		MinCostFactor:           10,
		MinPasswordLength:       6,
		GeneratedPasswordLength: 8,
	}
}

func newTestService() (*Service, *identity.InMemoryRepository) {
	repo := identity.NewInMemoryRepository()
	return NewService(repo, login.BcryptHasher{}, testOptions()), repo
}

func TestSetPassword_CreateThenVerify(t *testing.T) {
	ctx := context.Background()
	service, repo := newTestService()

	result, err := service.SetPassword(ctx, Params{
		Create:   "bob@example.org",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.UserID)
	assert.Equal(t, "s3cret-pass", result.Password)

	// created credentials immediately authenticate
	verifier := login.NewService(login.NewInMemoryRepository(repo), nil)
	userID, err := verifier.VerifyCredentials(ctx, "bob@example.org", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, result.UserID, userID)

	// and any other password is rejected, never a system error
	_, err = verifier.VerifyCredentials(ctx, "bob@example.org", "s3cret-pass2")
	assert.ErrorIs(t, err, login.ErrUnauthorized)

	// created user carries source=internal, sourceId=email
	user, err := repo.GetUserByID(ctx, result.UserID)
	require.NoError(t, err)
	assert.Equal(t, identity.SourceInternal, user.Source)
	assert.Equal(t, "bob@example.org", user.SourceID)
	assert.Equal(t, "bob@example.org", user.DisplayName)
}

func TestSetPassword_CreateAdminWithGeneratedPassword(t *testing.T) {
	ctx := context.Background()
	service, repo := newTestService()

	result, err := service.SetPassword(ctx, Params{
		Create:      "alice@example.org",
		DisplayName: "Alice",
		IsAdmin:     true,
	})
	require.NoError(t, err)

	// one standard role row and one admin role row
	roles := repo.UserRoles(result.UserID)
	require.Len(t, roles, 2)
	assert.Contains(t, roles, identity.RoleStandardUser)
	assert.Contains(t, roles, identity.RoleAdmin)

	// a random 8-character password was generated
	assert.Len(t, result.Password, 8)

	// and it verifies against the stored hash
	cred, err := repo.GetCredentialByUserID(ctx, result.UserID)
	require.NoError(t, err)
	match, err := login.BcryptHasher{}.Verify(result.Password, cred.Hash)
	require.NoError(t, err)
	assert.True(t, match)

	user, err := repo.GetUserByID(ctx, result.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.DisplayName)
}

func TestSetPassword_NonAdminGetsOnlyStandardRole(t *testing.T) {
	ctx := context.Background()
	service, repo := newTestService()

	result, err := service.SetPassword(ctx, Params{Create: "carol@example.org", Password: "longenough"})
	require.NoError(t, err)

	roles := repo.UserRoles(result.UserID)
	require.Len(t, roles, 1)
	assert.Equal(t, identity.RoleStandardUser, roles[0])
}

func TestSetPassword_DuplicateCreate(t *testing.T) {
	ctx := context.Background()
	service, repo := newTestService()

	_, err := service.SetPassword(ctx, Params{Create: "dup@example.org", Password: "longenough"})
	require.NoError(t, err)

	_, err = service.SetPassword(ctx, Params{Create: "dup@example.org", Password: "longenough"})
	var exists identity.ErrUserAlreadyExists
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "dup@example.org", exists.Email)

	// no duplicate user was created
	user, err := repo.FindInternalUserByEmail(ctx, "dup@example.org")
	require.NoError(t, err)
	assert.Len(t, repo.UserRoles(user.ID), 1)
}

func TestSetPassword_CostFactorPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("BelowFloorRejected", func(t *testing.T) {
		service, repo := newTestService()
		_, err := service.SetPassword(ctx, Params{Create: "cost@example.org", Password: "longenough", CostFactor: costOf(9)})
		var invalid ErrInvalidCostFactor
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 10, invalid.MinCostFactor)

		// validation failed before any store access
		_, err = repo.FindInternalUserByEmail(ctx, "cost@example.org")
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
	})

	t.Run("ExplicitZeroRejected", func(t *testing.T) {
		service, _ := newTestService()
		_, err := service.SetPassword(ctx, Params{Create: "cost@example.org", Password: "longenough", CostFactor: costOf(0)})
		var invalid ErrInvalidCostFactor
		require.ErrorAs(t, err, &invalid, "an explicit 0 must not fall back to the default")
	})

	t.Run("ExplicitCostEncodedInHash", func(t *testing.T) {
		service, repo := newTestService()
		result, err := service.SetPassword(ctx, Params{Create: "cost@example.org", Password: "longenough", CostFactor: costOf(11)})
		require.NoError(t, err)

		cred, err := repo.GetCredentialByUserID(ctx, result.UserID)
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(cred.Hash))
		require.NoError(t, err)
		assert.Equal(t, 11, cost)
	})

	t.Run("DefaultCostEncodedInHash", func(t *testing.T) {
		service, repo := newTestService()
		result, err := service.SetPassword(ctx, Params{Create: "cost@example.org", Password: "longenough"})
		require.NoError(t, err)

		cred, err := repo.GetCredentialByUserID(ctx, result.UserID)
		require.NoError(t, err)
		cost, err := bcrypt.Cost([]byte(cred.Hash))
		require.NoError(t, err)
		assert.Equal(t, testOptions().DefaultCostFactor, cost)
	})
}

func TestSetPassword_PasswordTooShort(t *testing.T) {
	ctx := context.Background()
	service, repo := newTestService()

	_, err := service.SetPassword(ctx, Params{Create: "short@example.org", Password: "tiny"})
	var tooShort ErrPasswordTooShort
	require.ErrorAs(t, err, &tooShort)
	assert.Equal(t, 6, tooShort.MinLength)

	_, err = repo.FindInternalUserByEmail(ctx, "short@example.org")
	assert.ErrorIs(t, err, identity.ErrUserNotFound)

	// the minimum counts characters: three two-byte runes are still too short
	_, err = service.SetPassword(ctx, Params{Create: "short@example.org", Password: "ááá"})
	require.ErrorAs(t, err, &tooShort)

	_, err = service.SetPassword(ctx, Params{Create: "short@example.org", Password: "pàsswörd"})
	assert.NoError(t, err)
}

func TestSetPassword_InvalidEmail(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	for _, email := range []string{"not-an-email", "a b@example.org", ""} {
		_, err := service.SetPassword(ctx, Params{Create: email, Password: "longenough"})
		if email == "" {
			assert.Error(t, err)
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidEmail, "email: %q", email)
	}
}

func TestSetPassword_ResetUpdatesCredentialInPlace(t *testing.T) {
	ctx := context.Background()
	service, repo := newTestService()

	created, err := service.SetPassword(ctx, Params{Create: "reset@example.org", Password: "first-pass"})
	require.NoError(t, err)

	first, err := repo.GetCredentialByUserID(ctx, created.UserID)
	require.NoError(t, err)

	// resetting by email updates the same row, never inserting a second one
	reset, err := service.SetPassword(ctx, Params{User: "reset@example.org", Password: "second-pass"})
	require.NoError(t, err)
	assert.Equal(t, created.UserID, reset.UserID)

	second, err := repo.GetCredentialByUserID(ctx, created.UserID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.Hash, second.Hash)

	match, err := login.BcryptHasher{}.Verify("second-pass", second.Hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestSetPassword_ExistingUserSelector(t *testing.T) {
	ctx := context.Background()
	service, repo := newTestService()

	t.Run("ByID", func(t *testing.T) {
		created, err := service.SetPassword(ctx, Params{Create: "byid@example.org", Password: "first-pass"})
		require.NoError(t, err)

		reset, err := service.SetPassword(ctx, Params{User: created.UserID.String(), Password: "second-pass"})
		require.NoError(t, err)
		assert.Equal(t, created.UserID, reset.UserID)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		_, err := service.SetPassword(ctx, Params{User: "missing@example.org", Password: "longenough"})
		assert.ErrorIs(t, err, identity.ErrUserNotFound)
	})

	t.Run("GarbageRef", func(t *testing.T) {
		_, err := service.SetPassword(ctx, Params{User: "@@@", Password: "longenough"})
		assert.ErrorIs(t, err, identity.ErrInvalidUserRef)
	})

	t.Run("ExternalSourceUser", func(t *testing.T) {
		external, err := repo.CreateUser(ctx, identity.CreateUserParams{
			DisplayName: "SSO User",
			Email:       "sso@example.org",
			Source:      "google",
			SourceID:    "google-9876",
		})
		require.NoError(t, err)

		_, err = service.SetPassword(ctx, Params{User: external.ID.String(), Password: "longenough"})
		assert.ErrorIs(t, err, identity.ErrNotInternalUser)
	})

	t.Run("NoSelector", func(t *testing.T) {
		_, err := service.SetPassword(ctx, Params{Password: "longenough"})
		assert.Error(t, err)
	})
}

// recordingTx satisfies pgx.Tx for the two methods the workflow calls; the
// embedded nil interface panics if anything else is reached.
type recordingTx struct {
	pgx.Tx
	commits   *int
	rollbacks *int
}

func (t recordingTx) Commit(ctx context.Context) error {
	*t.commits = *t.commits + 1
	return nil
}

func (t recordingTx) Rollback(ctx context.Context) error {
	*t.rollbacks = *t.rollbacks + 1
	return nil
}

type recordingTxBeginner struct {
	commits   int
	rollbacks int
}

func (b *recordingTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return recordingTx{commits: &b.commits, rollbacks: &b.rollbacks}, nil
}

// roleInsertFailure wraps the in-memory store and fails the role insert step,
// recording the transaction the workflow bound it to.
type roleInsertFailure struct {
	identity.Repository
	boundTx pgx.Tx
}

func (r *roleInsertFailure) AddUserRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return errors.New("insert user_roles: connection reset")
}

func (r *roleInsertFailure) WithTx(tx pgx.Tx) identity.Repository {
	r.boundTx = tx
	return r
}

func TestSetPassword_TransactionBoundaries(t *testing.T) {
	ctx := context.Background()

	t.Run("CommitOnSuccess", func(t *testing.T) {
		beginner := &recordingTxBeginner{}
		repo := identity.NewInMemoryRepository()
		service := NewService(repo, login.BcryptHasher{}, testOptions()).WithTxBeginner(beginner)

		_, err := service.SetPassword(ctx, Params{Create: "tx@example.org", Password: "longenough"})
		require.NoError(t, err)
		assert.Equal(t, 1, beginner.commits)
	})

	t.Run("RollbackWhenRoleInsertFails", func(t *testing.T) {
		beginner := &recordingTxBeginner{}
		repo := &roleInsertFailure{Repository: identity.NewInMemoryRepository()}
		service := NewService(repo, login.BcryptHasher{}, testOptions()).WithTxBeginner(beginner)

		_, err := service.SetPassword(ctx, Params{Create: "tx@example.org", Password: "longenough"})
		require.Error(t, err)

		// the workflow ran against the transaction-bound repository, and the
		// failure rolled the transaction back without ever committing
		assert.NotNil(t, repo.boundTx)
		assert.Zero(t, beginner.commits)
		assert.Equal(t, 1, beginner.rollbacks)
	})

	t.Run("ValidationFailsBeforeBegin", func(t *testing.T) {
		beginner := &recordingTxBeginner{}
		service := NewService(identity.NewInMemoryRepository(), login.BcryptHasher{}, testOptions()).WithTxBeginner(beginner)

		_, err := service.SetPassword(ctx, Params{Create: "tx@example.org", Password: "tiny"})
		var tooShort ErrPasswordTooShort
		require.ErrorAs(t, err, &tooShort)
		assert.Zero(t, beginner.commits)
		assert.Zero(t, beginner.rollbacks)
	})
}
