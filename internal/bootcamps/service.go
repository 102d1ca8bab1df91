package bootcamps

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devcamper/devcamper-api/internal/platform/geocode"
	"github.com/devcamper/devcamper-api/internal/platform/storage"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// RepositoryPort defines data access methods for bootcamps.
type RepositoryPort interface {
	Get(ctx context.Context, id string) (*Bootcamp, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Create(ctx context.Context, b *Bootcamp) error
	Update(ctx context.Context, b *Bootcamp) error
	SetPhoto(ctx context.Context, id, photo string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f Filter, params shared.ListParams) ([]Bootcamp, int, error)
	WithinRadius(ctx context.Context, lat, lng, miles float64) ([]Bootcamp, error)
}

// Upload is a photo submitted for a bootcamp.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service handles bootcamp business rules.
type Service struct {
	repo          RepositoryPort
	geocoder      geocode.Geocoder
	photos        storage.ObjectStore
	maxUploadSize int64
	logger        *slog.Logger
	now           func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, geocoder geocode.Geocoder, photos storage.ObjectStore, maxUploadSize int64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, geocoder: geocoder, photos: photos, maxUploadSize: maxUploadSize, logger: logger, now: time.Now}
}

// List returns one page of bootcamps.
func (s *Service) List(ctx context.Context, f Filter, params shared.ListParams) ([]Bootcamp, int, error) {
	return s.repo.List(ctx, f, params)
}

// Get returns a single bootcamp.
func (s *Service) Get(ctx context.Context, id string) (*Bootcamp, error) {
	return s.repo.Get(ctx, id)
}

// Create publishes a bootcamp owned by actor. Standard users may own one.
func (s *Service) Create(ctx context.Context, actor shared.Principal, in Input) (*Bootcamp, error) {
	if err := ValidateCareers(in.Careers); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		n, err := s.repo.CountByUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, shared.Errorf(shared.ErrValidation, "The user with ID %s has already published a bootcamp", actor.ID)
		}
	}
	loc, err := s.locate(ctx, in.Address)
	if err != nil {
		return nil, err
	}
	b := &Bootcamp{
		ID:            uuid.NewString(),
		UserID:        actor.ID,
		Name:          strings.TrimSpace(in.Name),
		Slug:          Slugify(in.Name),
		Description:   in.Description,
		Website:       in.Website,
		Phone:         in.Phone,
		Email:         in.Email,
		Address:       in.Address,
		Location:      loc,
		Careers:       in.Careers,
		Photo:         DefaultPhoto,
		Housing:       in.Housing,
		JobAssistance: in.JobAssistance,
		JobGuarantee:  in.JobGuarantee,
		AcceptGI:      in.AcceptGI,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Update applies p to bootcamp id when actor owns it or is an admin.
func (s *Service) Update(ctx context.Context, actor shared.Principal, id string, p Patch) (*Bootcamp, error) {
	b, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		b.Name = strings.TrimSpace(*p.Name)
		b.Slug = Slugify(b.Name)
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Website != nil {
		b.Website = *p.Website
	}
	if p.Phone != nil {
		b.Phone = *p.Phone
	}
	if p.Email != nil {
		b.Email = *p.Email
	}
	if p.Careers != nil {
		if err := ValidateCareers(*p.Careers); err != nil {
			return nil, err
		}
		b.Careers = *p.Careers
	}
	if p.Address != nil && *p.Address != b.Address {
		loc, err := s.locate(ctx, *p.Address)
		if err != nil {
			return nil, err
		}
		b.Address, b.Location = *p.Address, loc
	}
	setBool(&b.Housing, p.Housing)
	setBool(&b.JobAssistance, p.JobAssistance)
	setBool(&b.JobGuarantee, p.JobGuarantee)
	setBool(&b.AcceptGI, p.AcceptGI)

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes bootcamp id when actor owns it or is an admin.
func (s *Service) Delete(ctx context.Context, actor shared.Principal, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// WithinRadius finds bootcamps within miles of the zipcode's location.
func (s *Service) WithinRadius(ctx context.Context, zipcode string, miles float64) ([]Bootcamp, error) {
	if miles < 0 {
		return nil, shared.Errorf(shared.ErrValidation, "Distance must not be negative")
	}
	loc, err := s.locate(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	return s.repo.WithinRadius(ctx, loc.Latitude, loc.Longitude, miles)
}

// UploadPhoto stores an image for bootcamp id and returns its stored name.
func (s *Service) UploadPhoto(ctx context.Context, actor shared.Principal, id string, up Upload) (string, error) {
	b, err := s.owned(ctx, actor, id)
	if err != nil {
		return "", err
	}
	if up.Body == nil {
		return "", shared.Errorf(shared.ErrValidation, "Please upload a file")
	}
	if !strings.HasPrefix(up.ContentType, "image") {
		return "", shared.Errorf(shared.ErrValidation, "Please upload an image file")
	}
	if s.maxUploadSize > 0 && up.Size > s.maxUploadSize {
		return "", shared.Errorf(shared.ErrValidation, "Please upload an image file less than %d", s.maxUploadSize)
	}
	name := fmt.Sprintf("photo_%s%s", b.ID, filepath.Ext(up.Filename))
	if err := s.photos.Put(ctx, name, up.ContentType, up.Body, up.Size); err != nil {
		return "", fmt.Errorf("bootcamps: store photo: %w", err)
	}
	if err := s.repo.SetPhoto(ctx, b.ID, name); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Service) owned(ctx context.Context, actor shared.Principal, id string) (*Bootcamp, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := shared.Authorize(b.UserID, actor); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) locate(ctx context.Context, address string) (geocode.Location, error) {
	loc, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, geocode.ErrNoMatch) {
			return geocode.Location{}, shared.Wrap(shared.ErrValidation, err, "Could not geocode address "+address)
		}
		s.logger.Error("geocode", slog.String("address", address), slog.Any("error", err))
		return geocode.Location{}, err
	}
	return loc, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
