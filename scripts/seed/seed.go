package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"

	"github.com/devcamper/devcamper-api/internal/auth"
	"github.com/devcamper/devcamper-api/internal/bootcamps"
	"github.com/devcamper/devcamper-api/internal/platform/db"
	"github.com/devcamper/devcamper-api/internal/shared"
	"github.com/devcamper/devcamper-api/internal/users"
)

//go:embed data/*.json
var dataFS embed.FS

type seedUser struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     shared.Role `json:"role"`
	Password string      `json:"password"`
}

type seedCourse struct {
	ID                   string  `json:"id"`
	BootcampID           string  `json:"bootcamp"`
	UserID               string  `json:"user"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Weeks                string  `json:"weeks"`
	Tuition              float64 `json:"tuition"`
	MinimumSkill         string  `json:"minimumSkill"`
	ScholarshipAvailable bool    `json:"scholarshipAvailable"`
}

type seedReview struct {
	ID         string `json:"id"`
	BootcampID string `json:"bootcamp"`
	UserID     string `json:"user"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	Rating     int    `json:"rating"`
}

// Dataset is the sample data shipped with the seeder.
type Dataset struct {
	Users     []seedUser
	Bootcamps []bootcamps.Bootcamp
	Courses   []seedCourse
	Reviews   []seedReview
}

// LoadDataset decodes the embedded JSON files and checks their references.
func LoadDataset() (*Dataset, error) {
	var ds Dataset
	for name, dst := range map[string]any{
		"users.json":     &ds.Users,
		"bootcamps.json": &ds.Bootcamps,
		"courses.json":   &ds.Courses,
		"reviews.json":   &ds.Reviews,
	} {
		raw, err := dataFS.ReadFile("data/" + name)
		if err != nil {
			return nil, fmt.Errorf("seed: read %s: %w", name, err)
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("seed: decode %s: %w", name, err)
		}
	}
	return &ds, ds.validate()
}

func (ds *Dataset) validate() error {
	userIDs := map[string]bool{}
	for _, u := range ds.Users {
		if !u.Role.Valid() {
			return fmt.Errorf("seed: user %s has invalid role %q", u.ID, u.Role)
		}
		userIDs[u.ID] = true
	}
	bootcampIDs := map[string]bool{}
	for _, b := range ds.Bootcamps {
		if !userIDs[b.UserID] {
			return fmt.Errorf("seed: bootcamp %s references unknown user %s", b.ID, b.UserID)
		}
		if err := bootcamps.ValidateCareers(b.Careers); err != nil {
			return fmt.Errorf("seed: bootcamp %s: %w", b.ID, err)
		}
		bootcampIDs[b.ID] = true
	}
	for _, c := range ds.Courses {
		if !bootcampIDs[c.BootcampID] || !userIDs[c.UserID] {
			return fmt.Errorf("seed: course %s has dangling references", c.ID)
		}
	}
	for _, r := range ds.Reviews {
		if !bootcampIDs[r.BootcampID] || !userIDs[r.UserID] {
			return fmt.Errorf("seed: review %s has dangling references", r.ID)
		}
		if r.Rating < 1 || r.Rating > 10 {
			return fmt.Errorf("seed: review %s rating %d out of range", r.ID, r.Rating)
		}
	}
	return nil
}

// Seeder writes and removes the sample dataset.
type Seeder struct {
	pool   db.Pool
	hasher auth.PasswordHasher
	now    func() time.Time
}

// NewSeeder builds a Seeder.
func NewSeeder(pool db.Pool, hasher auth.PasswordHasher) *Seeder {
	return &Seeder{pool: pool, hasher: hasher, now: time.Now}
}

// Import inserts ds in one transaction and recomputes the bootcamp averages.
func (s *Seeder) Import(ctx context.Context, ds *Dataset) error {
	now := s.now().UTC()
	hashed := make([]auth.User, 0, len(ds.Users))
	for _, u := range ds.Users {
		digest, err := s.hasher.Hash(ctx, u.Password)
		if err != nil {
			return fmt.Errorf("seed: hash password of %s: %w", u.Email, err)
		}
		hashed = append(hashed, auth.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, PasswordHash: digest, CreatedAt: now})
	}

	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		userRepo := users.NewRepository(tx)
		for i := range hashed {
			if err := userRepo.Create(ctx, &hashed[i]); err != nil {
				return fmt.Errorf("seed: user %s: %w", hashed[i].Email, err)
			}
		}

		bootcampRepo := bootcamps.NewRepository(tx)
		for _, b := range ds.Bootcamps {
			b.Slug = bootcamps.Slugify(b.Name)
			b.Photo = bootcamps.DefaultPhoto
			b.CreatedAt = now
			if err := bootcampRepo.Create(ctx, &b); err != nil {
				return fmt.Errorf("seed: bootcamp %s: %w", b.Name, err)
			}
		}

		batch := &pgx.Batch{}
		for _, c := range ds.Courses {
			batch.Queue(`INSERT INTO courses (id, bootcamp_id, user_id, title, description, weeks, tuition, minimum_skill, scholarship_available, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				c.ID, c.BootcampID, c.UserID, c.Title, c.Description, c.Weeks, c.Tuition, c.MinimumSkill, c.ScholarshipAvailable, now)
		}
		for _, r := range ds.Reviews {
			batch.Queue(`INSERT INTO reviews (id, bootcamp_id, user_id, title, text, rating, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				r.ID, r.BootcampID, r.UserID, r.Title, r.Text, r.Rating, now)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("seed: courses and reviews: %w", err)
		}

		for _, b := range ds.Bootcamps {
			if err := bootcamps.RefreshAverageCost(ctx, tx, b.ID); err != nil {
				return err
			}
			if err := bootcamps.RefreshAverageRating(ctx, tx, b.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Destroy removes every row. Courses and reviews go with their bootcamps.
func (s *Seeder) Destroy(ctx context.Context) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE reviews, courses, bootcamps, users`); err != nil {
			return fmt.Errorf("seed: truncate: %w", err)
		}
		return nil
	})
}

func withSeeder(cmd *cobra.Command, cfg *seedConfig, fn func(context.Context, *Seeder) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	pool, err := db.New(ctx, cfg.dsn, db.PoolOptions{MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}
	return fn(ctx, NewSeeder(pool, auth.NewBcryptHasher(10, 4)))
}
