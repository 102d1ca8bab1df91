package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devcamper/devcamper-api/internal/auth"
	"github.com/devcamper/devcamper-api/internal/platform/db"
	"github.com/devcamper/devcamper-api/internal/shared"
)

const userColumns = `id, name, email, role, password_hash, COALESCE(reset_password_token, ''), reset_password_expire, created_at`

// Repository provides PostgreSQL backed persistence for accounts.
type Repository struct {
	db db.DBTX
}

var _ auth.UserStore = (*Repository)(nil)

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		u    auth.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PasswordHash, &u.ResetPasswordToken, &u.ResetPasswordExpire, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = shared.Role(role)
	return &u, nil
}

func notFound(id string) error {
	return shared.Errorf(shared.ErrNotFound, "User not found with id of %s", id)
}

func (r *Repository) one(ctx context.Context, missing error, query string, args ...any) (*auth.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, missing
		}
		return nil, fmt.Errorf("users: query: %w", err)
	}
	return u, nil
}

// FindByID returns the account with id.
func (r *Repository) FindByID(ctx context.Context, id string) (*auth.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound(id)
	}
	return r.one(ctx, notFound(id), `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail returns the account registered under email, case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.one(ctx, shared.Errorf(shared.ErrNotFound, "User not found"),
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// FindByResetToken returns the account holding tokenHash with an expiry after now.
func (r *Repository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*auth.User, error) {
	return r.one(ctx, shared.Errorf(shared.ErrNotFound, "User not found"),
		`SELECT `+userColumns+` FROM users WHERE reset_password_token = $1 AND reset_password_expire > $2`, tokenHash, now)
}

// Create inserts user.
func (r *Repository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.db.Exec(ctx, `INSERT INTO users (id, name, email, role, password_hash, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, string(user.Role), user.PasswordHash, user.CreatedAt)
	return mapWriteErr(err)
}

// UpdateDetails changes the name and email of id.
func (r *Repository) UpdateDetails(ctx context.Context, id, name, email string) (*auth.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound(id)
	}
	u, err := r.one(ctx, notFound(id),
		`UPDATE users SET name = $2, email = $3 WHERE id = $1 RETURNING `+userColumns, id, name, email)
	return u, mapWriteErr(err)
}

// Update replaces the admin-editable fields of id.
func (r *Repository) Update(ctx context.Context, id string, name, email string, role shared.Role) (*auth.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound(id)
	}
	u, err := r.one(ctx, notFound(id),
		`UPDATE users SET name = $2, email = $3, role = $4 WHERE id = $1 RETURNING `+userColumns, id, name, email, string(role))
	return u, mapWriteErr(err)
}

// SetPassword stores a new digest and clears any reset token.
func (r *Repository) SetPassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, id, `UPDATE users SET password_hash = $2, reset_password_token = NULL, reset_password_expire = NULL WHERE id = $1`, id, passwordHash)
}

// SetResetToken records a reset token digest and its expiry.
func (r *Repository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	return r.exec(ctx, id, `UPDATE users SET reset_password_token = $2, reset_password_expire = $3 WHERE id = $1`, id, tokenHash, expiresAt)
}

// ClearResetToken removes any pending reset token.
func (r *Repository) ClearResetToken(ctx context.Context, id string) error {
	return r.exec(ctx, id, `UPDATE users SET reset_password_token = NULL, reset_password_expire = NULL WHERE id = $1`, id)
}

// PurgeExpiredResetTokens clears every reset token that expired at or before now.
func (r *Repository) PurgeExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE users SET reset_password_token = NULL, reset_password_expire = NULL
		WHERE reset_password_expire IS NOT NULL AND reset_password_expire <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("users: purge reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes id and, by cascade, everything it owns.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, id, `DELETE FROM users WHERE id = $1`, id)
}

func (r *Repository) exec(ctx context.Context, id, query string, args ...any) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound(id)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("users: exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

var sortableColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
}

// List returns one page of accounts and the total count.
func (r *Repository) List(ctx context.Context, params shared.ListParams) ([]auth.User, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("users: count: %w", err)
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY `+params.OrderBy()+` LIMIT $1 OFFSET $2`,
		params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()
	out := make([]auth.User, 0, params.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("users: scan: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	return out, total, nil
}

func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err) {
		return shared.Wrap(shared.ErrValidation, err, "Duplicate field value entered")
	}
	return err
}
