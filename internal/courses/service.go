package courses

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/devcamper/devcamper-api/internal/bootcamps"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// BootcampLookup resolves the bootcamp a course is attached to.
type BootcampLookup interface {
	Get(ctx context.Context, id string) (*bootcamps.Bootcamp, error)
}

// Service handles course business rules.
type Service struct {
	repo      Repository
	bootcamps BootcampLookup
	now       func() time.Time
}

// NewService builds Service instance.
func NewService(repo Repository, lookup BootcampLookup) *Service {
	return &Service{repo: repo, bootcamps: lookup, now: time.Now}
}

// List returns one page of courses across all bootcamps.
func (s *Service) List(ctx context.Context, f Filter, params shared.ListParams) ([]Course, int, error) {
	return s.repo.List(ctx, f, params)
}

// ListByBootcamp returns every course of bootcampID.
func (s *Service) ListByBootcamp(ctx context.Context, bootcampID string) ([]Course, error) {
	if _, err := s.bootcamps.Get(ctx, bootcampID); err != nil {
		return nil, err
	}
	items, _, err := s.repo.List(ctx, Filter{BootcampID: bootcampID}, shared.ListParams{Sort: []shared.SortField{DefaultSort}})
	return items, err
}

// Get returns a single course.
func (s *Service) Get(ctx context.Context, id string) (*Course, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a course to bootcampID. Only the bootcamp owner or an admin may.
func (s *Service) Create(ctx context.Context, actor shared.Principal, bootcampID string, in Input) (*Course, error) {
	if in.Tuition == nil {
		return nil, shared.Errorf(shared.ErrValidation, "Please add a tuition")
	}
	b, err := s.bootcamps.Get(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if err := shared.Authorize(b.UserID, actor); err != nil {
		return nil, err
	}
	c := &Course{
		ID:                   uuid.NewString(),
		BootcampID:           b.ID,
		Bootcamp:             &BootcampRef{ID: b.ID, Name: b.Name, Description: b.Description},
		UserID:               actor.ID,
		Title:                in.Title,
		Description:          in.Description,
		Weeks:                in.Weeks,
		Tuition:              *in.Tuition,
		MinimumSkill:         in.MinimumSkill,
		ScholarshipAvailable: in.ScholarshipAvailable,
		CreatedAt:            s.now().UTC(),
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Create(ctx, c); err != nil {
			return err
		}
		return repo.RefreshAverageCost(ctx, c.BootcampID)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies p to course id when actor created it or is an admin.
func (s *Service) Update(ctx context.Context, actor shared.Principal, id string, p Patch) (*Course, error) {
	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Weeks != nil {
		c.Weeks = *p.Weeks
	}
	if p.Tuition != nil {
		c.Tuition = *p.Tuition
	}
	if p.MinimumSkill != nil {
		c.MinimumSkill = *p.MinimumSkill
	}
	if p.ScholarshipAvailable != nil {
		c.ScholarshipAvailable = *p.ScholarshipAvailable
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, c); err != nil {
			return err
		}
		return repo.RefreshAverageCost(ctx, c.BootcampID)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes course id when actor created it or is an admin.
func (s *Service) Delete(ctx context.Context, actor shared.Principal, id string) error {
	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Delete(ctx, c.ID); err != nil {
			return err
		}
		return repo.RefreshAverageCost(ctx, c.BootcampID)
	})
}

func (s *Service) owned(ctx context.Context, actor shared.Principal, id string) (*Course, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := shared.Authorize(c.UserID, actor); err != nil {
		return nil, err
	}
	return c, nil
}
