package reviews

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devcamper/devcamper-api/internal/bootcamps"
	"github.com/devcamper/devcamper-api/internal/platform/db"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// Repository defines data access methods for reviews.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id string) (*Review, error)
	// List returns reviews, optionally of one bootcamp, and their total. A
	// zero Limit returns all.
	List(ctx context.Context, bootcampID string, params shared.ListParams) ([]Review, int, error)
	Create(ctx context.Context, rv *Review) error
	Update(ctx context.Context, rv *Review) error
	Delete(ctx context.Context, id string) error
	RefreshAverageRating(ctx context.Context, bootcampID string) error
}

const reviewSelect = `SELECT r.id, r.bootcamp_id, b.name, b.description, r.user_id, r.title, r.text, r.rating, r.created_at
	FROM reviews r JOIN bootcamps b ON b.id = r.bootcamp_id`

// DefaultSort orders reviews newest first.
var DefaultSort = shared.SortField{Column: "r.created_at", Desc: true}

// SortableColumns maps API sort keys to columns.
var SortableColumns = map[string]string{
	"title":     "r.title",
	"rating":    "r.rating",
	"createdAt": "r.created_at",
}

type repository struct {
	db   db.DBTX
	pool db.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool db.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// NotFound builds the lookup failure for id.
func NotFound(id string) error {
	return shared.Errorf(shared.ErrNotFound, "No review found with the id of %s", id)
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func scanReview(row pgx.Row) (*Review, error) {
	var rv Review
	ref := &BootcampRef{}
	if err := row.Scan(&rv.ID, &rv.BootcampID, &ref.Name, &ref.Description, &rv.UserID, &rv.Title, &rv.Text, &rv.Rating, &rv.CreatedAt); err != nil {
		return nil, err
	}
	ref.ID = rv.BootcampID
	rv.Bootcamp = ref
	return &rv, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Review, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, NotFound(id)
	}
	rv, err := scanReview(r.db.QueryRow(ctx, reviewSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, NotFound(id)
		}
		return nil, fmt.Errorf("reviews: get: %w", err)
	}
	return rv, nil
}

func (r *repository) List(ctx context.Context, bootcampID string, params shared.ListParams) ([]Review, int, error) {
	var conds db.Conditions
	if bootcampID != "" {
		conds.Add("r.bootcamp_id = $%d", bootcampID)
	}
	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM reviews r `+conds.Where(), conds.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("reviews: count: %w", err)
	}
	query := fmt.Sprintf(`%s %s ORDER BY %s`, reviewSelect, conds.Where(), params.OrderBy())
	args := conds.Args()
	if params.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, conds.Next(), conds.Next()+1)
		args = append(args, params.Limit, params.Offset())
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("reviews: list: %w", err)
	}
	defer rows.Close()
	out := []Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("reviews: scan: %w", err)
		}
		out = append(out, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("reviews: rows: %w", err)
	}
	return out, total, nil
}

func (r *repository) Create(ctx context.Context, rv *Review) error {
	_, err := r.db.Exec(ctx, `INSERT INTO reviews (id, bootcamp_id, user_id, title, text, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rv.ID, rv.BootcampID, rv.UserID, rv.Title, rv.Text, rv.Rating, rv.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.Wrap(shared.ErrValidation, err, "Duplicate field value entered")
		}
		return fmt.Errorf("reviews: create: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, rv *Review) error {
	tag, err := r.db.Exec(ctx, `UPDATE reviews SET title = $2, text = $3, rating = $4 WHERE id = $1`,
		rv.ID, rv.Title, rv.Text, rv.Rating)
	if err != nil {
		return fmt.Errorf("reviews: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound(rv.ID)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("reviews: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound(id)
	}
	return nil
}

func (r *repository) RefreshAverageRating(ctx context.Context, bootcampID string) error {
	return bootcamps.RefreshAverageRating(ctx, r.db, bootcampID)
}
