package courses

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devcamper/devcamper-api/internal/bootcamps"
	"github.com/devcamper/devcamper-api/internal/platform/db"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// Repository defines data access methods for courses.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id string) (*Course, error)
	// List returns matching courses and their total. A zero Limit returns all.
	List(ctx context.Context, f Filter, params shared.ListParams) ([]Course, int, error)
	Create(ctx context.Context, c *Course) error
	Update(ctx context.Context, c *Course) error
	Delete(ctx context.Context, id string) error
	RefreshAverageCost(ctx context.Context, bootcampID string) error
}

const courseSelect = `SELECT c.id, c.bootcamp_id, b.name, b.description, c.user_id, c.title, c.description, c.weeks,
	c.tuition, c.minimum_skill, c.scholarship_available, c.created_at
	FROM courses c JOIN bootcamps b ON b.id = c.bootcamp_id`

// DefaultSort orders courses newest first.
var DefaultSort = shared.SortField{Column: "c.created_at", Desc: true}

// SortableColumns maps API sort keys to columns.
var SortableColumns = map[string]string{
	"title":     "c.title",
	"tuition":   "c.tuition",
	"weeks":     "c.weeks",
	"createdAt": "c.created_at",
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
	return shared.Errorf(shared.ErrNotFound, "No course with the id of %s", id)
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func scanCourse(row pgx.Row) (*Course, error) {
	var c Course
	ref := &BootcampRef{}
	if err := row.Scan(&c.ID, &c.BootcampID, &ref.Name, &ref.Description, &c.UserID, &c.Title, &c.Description,
		&c.Weeks, &c.Tuition, &c.MinimumSkill, &c.ScholarshipAvailable, &c.CreatedAt); err != nil {
		return nil, err
	}
	ref.ID = c.BootcampID
	c.Bootcamp = ref
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id string) (*Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, NotFound(id)
	}
	c, err := scanCourse(r.db.QueryRow(ctx, courseSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, NotFound(id)
		}
		return nil, fmt.Errorf("courses: get: %w", err)
	}
	return c, nil
}

func (r *repository) List(ctx context.Context, f Filter, params shared.ListParams) ([]Course, int, error) {
	var conds db.Conditions
	if f.BootcampID != "" {
		conds.Add("c.bootcamp_id = $%d", f.BootcampID)
	}
	if f.MinimumSkill != "" {
		conds.Add("c.minimum_skill = $%d", f.MinimumSkill)
	}
	for _, t := range f.Tuition {
		conds.Add("c.tuition "+t.Op+" $%d", t.Value)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM courses c `+conds.Where(), conds.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("courses: count: %w", err)
	}
	query := fmt.Sprintf(`%s %s ORDER BY %s`, courseSelect, conds.Where(), params.OrderBy())
	args := conds.Args()
	if params.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, conds.Next(), conds.Next()+1)
		args = append(args, params.Limit, params.Offset())
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("courses: list: %w", err)
	}
	defer rows.Close()
	out := []Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("courses: scan: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("courses: rows: %w", err)
	}
	return out, total, nil
}

func (r *repository) Create(ctx context.Context, c *Course) error {
	_, err := r.db.Exec(ctx, `INSERT INTO courses (id, bootcamp_id, user_id, title, description, weeks, tuition,
		minimum_skill, scholarship_available, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.BootcampID, c.UserID, c.Title, c.Description, c.Weeks, c.Tuition, c.MinimumSkill, c.ScholarshipAvailable, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("courses: create: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, c *Course) error {
	tag, err := r.db.Exec(ctx, `UPDATE courses SET title = $2, description = $3, weeks = $4, tuition = $5,
		minimum_skill = $6, scholarship_available = $7 WHERE id = $1`,
		c.ID, c.Title, c.Description, c.Weeks, c.Tuition, c.MinimumSkill, c.ScholarshipAvailable)
	if err != nil {
		return fmt.Errorf("courses: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound(c.ID)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("courses: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound(id)
	}
	return nil
}

func (r *repository) RefreshAverageCost(ctx context.Context, bootcampID string) error {
	return bootcamps.RefreshAverageCost(ctx, r.db, bootcampID)
}
