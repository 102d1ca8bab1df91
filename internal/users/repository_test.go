package users

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devcamper/devcamper-api/internal/auth"
	"github.com/devcamper/devcamper-api/internal/shared"
)

const malformedID = "5d7a514b5d2c12c7449be042"

var (
	userID    = "7f9c24e5-1c0e-4a43-9b1e-2b8c6f0a9d11"
	createdAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	userCols  = []string{"id", "name", "email", "role", "password_hash", "reset_password_token", "reset_password_expire", "created_at"}
)

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func userRow(expire *time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(userCols).
		AddRow(userID, "Jane", "jane@example.com", "standard", "$2a$10$digest", "", expire, createdAt)
}

func TestFindByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(userRow(nil))

	u, err := repo.FindByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.Name)
	assert.Equal(t, shared.RoleStandard, u.Role)
	assert.Nil(t, u.ResetPasswordExpire)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(userCols))

	_, err := repo.FindByID(context.Background(), userID)
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "User not found with id of "+userID, shared.Message(err))
}

func TestFindByIDMalformedSkipsQuery(t *testing.T) {
	repo, mock := newMockRepo(t)
	_, err := repo.FindByID(context.Background(), malformedID)
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByResetTokenUsesStrictExpiry(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	expire := now.Add(time.Minute)
	mock.ExpectQuery(`WHERE reset_password_token = \$1 AND reset_password_expire > \$2`).
		WithArgs("hash", now).
		WillReturnRows(userRow(&expire))

	u, err := repo.FindByResetToken(context.Background(), "hash", now)
	require.NoError(t, err)
	require.NotNil(t, u.ResetPasswordExpire)
	assert.Equal(t, expire, *u.ResetPasswordExpire)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(userID, "Jane", "jane@example.com", "standard", "digest", createdAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &auth.User{
		ID: userID, Name: "Jane", Email: "jane@example.com", Role: shared.RoleStandard, PasswordHash: "digest", CreatedAt: createdAt,
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "Duplicate field value entered", shared.Message(err))
}

func TestSetPasswordClearsResetFields(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE users SET password_hash = \$2, reset_password_token = NULL, reset_password_expire = NULL WHERE id = \$1`).
		WithArgs(userID, "digest").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetPassword(context.Background(), userID, "digest"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearResetTokenMissingUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`UPDATE users SET reset_password_token = NULL`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.ClearResetToken(context.Background(), userID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestList(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM users`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(30))
	mock.ExpectQuery(`ORDER BY name ASC, created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 10).
		WillReturnRows(userRow(nil))

	params := shared.ListParams{Page: 2, Limit: 10, Sort: []shared.SortField{{Column: "name"}, {Column: "created_at", Desc: true}}}
	users, total, err := repo.List(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 30, total)
	require.Len(t, users, 1)
	assert.Equal(t, "jane@example.com", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeExpiredResetTokens(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := createdAt.Add(time.Hour)
	mock.ExpectExec(`UPDATE users SET reset_password_token = NULL, reset_password_expire = NULL\s+WHERE reset_password_expire IS NOT NULL AND reset_password_expire <= \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := repo.PurgeExpiredResetTokens(context.Background(), now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
