package reviews

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devcamper/devcamper-api/internal/bootcamps"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// BootcampLookup resolves the reviewed bootcamp.
type BootcampLookup interface {
	Get(ctx context.Context, id string) (*bootcamps.Bootcamp, error)
}

// Service handles review business rules.
type Service struct {
	repo      Repository
	bootcamps BootcampLookup
	now       func() time.Time
}

// NewService builds Service instance.
func NewService(repo Repository, lookup BootcampLookup) *Service {
	return &Service{repo: repo, bootcamps: lookup, now: time.Now}
}

// List returns one page of reviews across all bootcamps.
func (s *Service) List(ctx context.Context, params shared.ListParams) ([]Review, int, error) {
	return s.repo.List(ctx, "", params)
}

// ListByBootcamp returns every review of bootcampID.
func (s *Service) ListByBootcamp(ctx context.Context, bootcampID string) ([]Review, error) {
	if _, err := s.bootcamps.Get(ctx, bootcampID); err != nil {
		return nil, err
	}
	items, _, err := s.repo.List(ctx, bootcampID, shared.ListParams{Sort: []shared.SortField{DefaultSort}})
	return items, err
}

// Get returns a single review.
func (s *Service) Get(ctx context.Context, id string) (*Review, error) {
	return s.repo.Get(ctx, id)
}

// Create adds actor's review of bootcampID. A user reviews a bootcamp at most once.
func (s *Service) Create(ctx context.Context, actor shared.Principal, bootcampID string, in Input) (*Review, error) {
	b, err := s.bootcamps.Get(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	rv := &Review{
		ID:         uuid.NewString(),
		BootcampID: b.ID,
		Bootcamp:   &BootcampRef{ID: b.ID, Name: b.Name, Description: b.Description},
		UserID:     actor.ID,
		Title:      in.Title,
		Text:       in.Text,
		Rating:     in.Rating,
		CreatedAt:  s.now().UTC(),
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Create(ctx, rv); err != nil {
			return err
		}
		return repo.RefreshAverageRating(ctx, rv.BootcampID)
	})
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// Update applies p to review id when actor wrote it or is an admin.
func (s *Service) Update(ctx context.Context, actor shared.Principal, id string, p Patch) (*Review, error) {
	rv, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		rv.Title = *p.Title
	}
	if p.Text != nil {
		rv.Text = *p.Text
	}
	if p.Rating != nil {
		rv.Rating = *p.Rating
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, rv); err != nil {
			return err
		}
		return repo.RefreshAverageRating(ctx, rv.BootcampID)
	})
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// Delete removes review id when actor wrote it or is an admin.
func (s *Service) Delete(ctx context.Context, actor shared.Principal, id string) error {
	rv, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Delete(ctx, rv.ID); err != nil {
			return err
		}
		return repo.RefreshAverageRating(ctx, rv.BootcampID)
	})
}

func (s *Service) owned(ctx context.Context, actor shared.Principal, id string) (*Review, error) {
	rv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := shared.Authorize(rv.UserID, actor); err != nil {
		return nil, err
	}
	return rv, nil
}
