package bootcamps

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devcamper/devcamper-api/internal/platform/db"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// EarthRadiusMiles is the sphere radius used by radius searches.
const EarthRadiusMiles = 3963.0

const bootcampColumns = `id, user_id, name, slug, description, website, phone, email, address,
	COALESCE(latitude, 0), COALESCE(longitude, 0), formatted_address, street, city, state, zipcode, country,
	careers, average_rating, average_cost, photo, housing, job_assistance, job_guarantee, accept_gi, created_at`

// SortableColumns maps API sort keys to columns.
var SortableColumns = map[string]string{
	"name":          "name",
	"averageCost":   "average_cost",
	"averageRating": "average_rating",
	"createdAt":     "created_at",
}

// Repository provides PostgreSQL backed persistence for bootcamps.
type Repository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

// NotFound builds the lookup failure for id.
func NotFound(id string) error {
	return shared.Errorf(shared.ErrNotFound, "Bootcamp not found with id of %s", id)
}

func scanBootcamp(row pgx.Row) (*Bootcamp, error) {
	var b Bootcamp
	loc := &b.Location
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Slug, &b.Description, &b.Website, &b.Phone, &b.Email, &b.Address,
		&loc.Latitude, &loc.Longitude, &loc.FormattedAddress, &loc.Street, &loc.City, &loc.State, &loc.Zipcode, &loc.Country,
		&b.Careers, &b.AverageRating, &b.AverageCost, &b.Photo, &b.Housing, &b.JobAssistance, &b.JobGuarantee, &b.AcceptGI, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collect(rows pgx.Rows) ([]Bootcamp, error) {
	defer rows.Close()
	out := []Bootcamp{}
	for rows.Next() {
		b, err := scanBootcamp(rows)
		if err != nil {
			return nil, fmt.Errorf("bootcamps: scan: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bootcamps: rows: %w", err)
	}
	return out, nil
}

// Get returns the bootcamp with id.
func (r *Repository) Get(ctx context.Context, id string) (*Bootcamp, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, NotFound(id)
	}
	b, err := scanBootcamp(r.db.QueryRow(ctx, `SELECT `+bootcampColumns+` FROM bootcamps WHERE id = $1`, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, NotFound(id)
		}
		return nil, fmt.Errorf("bootcamps: get: %w", err)
	}
	return b, nil
}

// CountByUser returns how many bootcamps userID has published.
func (r *Repository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM bootcamps WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("bootcamps: count by user: %w", err)
	}
	return n, nil
}

// Create inserts b.
func (r *Repository) Create(ctx context.Context, b *Bootcamp) error {
	loc := b.Location
	_, err := r.db.Exec(ctx, `INSERT INTO bootcamps (id, user_id, name, slug, description, website, phone, email, address,
		latitude, longitude, formatted_address, street, city, state, zipcode, country,
		careers, photo, housing, job_assistance, job_guarantee, accept_gi, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
		b.ID, b.UserID, b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email, b.Address,
		loc.Latitude, loc.Longitude, loc.FormattedAddress, loc.Street, loc.City, loc.State, loc.Zipcode, loc.Country,
		b.Careers, b.Photo, b.Housing, b.JobAssistance, b.JobGuarantee, b.AcceptGI, b.CreatedAt)
	return mapWriteErr(err)
}

// Update stores the editable fields of b.
func (r *Repository) Update(ctx context.Context, b *Bootcamp) error {
	loc := b.Location
	tag, err := r.db.Exec(ctx, `UPDATE bootcamps SET name = $2, slug = $3, description = $4, website = $5, phone = $6, email = $7,
		address = $8, latitude = $9, longitude = $10, formatted_address = $11, street = $12, city = $13, state = $14,
		zipcode = $15, country = $16, careers = $17, housing = $18, job_assistance = $19, job_guarantee = $20, accept_gi = $21
		WHERE id = $1`,
		b.ID, b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email,
		b.Address, loc.Latitude, loc.Longitude, loc.FormattedAddress, loc.Street, loc.City, loc.State,
		loc.Zipcode, loc.Country, b.Careers, b.Housing, b.JobAssistance, b.JobGuarantee, b.AcceptGI)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound(b.ID)
	}
	return nil
}

// SetPhoto records the stored photo name of id.
func (r *Repository) SetPhoto(ctx context.Context, id, photo string) error {
	tag, err := r.db.Exec(ctx, `UPDATE bootcamps SET photo = $2 WHERE id = $1`, id, photo)
	if err != nil {
		return fmt.Errorf("bootcamps: set photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound(id)
	}
	return nil
}

// Delete removes id; courses and reviews go with it.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bootcamps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("bootcamps: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return NotFound(id)
	}
	return nil
}

// List returns one page of bootcamps matching f and the total match count.
func (r *Repository) List(ctx context.Context, f Filter, params shared.ListParams) ([]Bootcamp, int, error) {
	var conds db.Conditions
	if f.Career != "" {
		conds.Add("$%d = ANY(careers)", f.Career)
	}
	if f.State != "" {
		conds.Add("state = $%d", f.State)
	}
	if f.City != "" {
		conds.Add("city = $%d", f.City)
	}
	addBool(&conds, "housing", f.Housing)
	addBool(&conds, "job_assistance", f.JobAssistance)
	addBool(&conds, "job_guarantee", f.JobGuarantee)
	addBool(&conds, "accept_gi", f.AcceptGI)
	addRange(&conds, "average_cost", f.AverageCost)
	addRange(&conds, "average_rating", f.AverageRating)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM bootcamps `+conds.Where(), conds.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("bootcamps: count: %w", err)
	}
	query := fmt.Sprintf(`SELECT %s FROM bootcamps %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		bootcampColumns, conds.Where(), params.OrderBy(), conds.Next(), conds.Next()+1)
	rows, err := r.db.Query(ctx, query, append(conds.Args(), params.Limit, params.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("bootcamps: list: %w", err)
	}
	out, err := collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// WithinRadius returns bootcamps whose great-circle distance from
// (lat, lng) is at most miles.
func (r *Repository) WithinRadius(ctx context.Context, lat, lng, miles float64) ([]Bootcamp, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bootcampColumns+` FROM bootcamps
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		AND $4 * 2 * asin(least(1, sqrt(
			power(sin(radians(latitude - $1) / 2), 2) +
			cos(radians($1)) * cos(radians(latitude)) * power(sin(radians(longitude - $2) / 2), 2)
		))) <= $3
		ORDER BY created_at DESC`, lat, lng, miles, EarthRadiusMiles)
	if err != nil {
		return nil, fmt.Errorf("bootcamps: radius: %w", err)
	}
	return collect(rows)
}

// RefreshAverageCost recomputes the average tuition of bootcampID rounded up
// to the nearest 10. Run it on the transaction that changed the courses.
func RefreshAverageCost(ctx context.Context, q db.DBTX, bootcampID string) error {
	_, err := q.Exec(ctx, `UPDATE bootcamps SET average_cost =
		(SELECT ceil(avg(tuition) / 10) * 10 FROM courses WHERE bootcamp_id = $1)
		WHERE id = $1`, bootcampID)
	if err != nil {
		return fmt.Errorf("bootcamps: refresh average cost: %w", err)
	}
	return nil
}

// RefreshAverageRating recomputes the mean review rating of bootcampID.
func RefreshAverageRating(ctx context.Context, q db.DBTX, bootcampID string) error {
	_, err := q.Exec(ctx, `UPDATE bootcamps SET average_rating =
		(SELECT avg(rating) FROM reviews WHERE bootcamp_id = $1)
		WHERE id = $1`, bootcampID)
	if err != nil {
		return fmt.Errorf("bootcamps: refresh average rating: %w", err)
	}
	return nil
}

func addBool(c *db.Conditions, column string, v *bool) {
	if v != nil {
		c.Add(column+" = $%d", *v)
	}
}

func addRange(c *db.Conditions, column string, terms []shared.RangeTerm) {
	for _, t := range terms {
		c.Add(column+" "+t.Op+" $%d", t.Value)
	}
}

func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err) {
		return shared.Wrap(shared.ErrValidation, err, "Duplicate field value entered")
	}
	return fmt.Errorf("bootcamps: write: %w", err)
}
