package reviews

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devcamper/devcamper-api/internal/bootcamps"
	"github.com/devcamper/devcamper-api/internal/shared"
)

type memRepo struct {
	mu        sync.Mutex
	reviews   map[string]Review
	avgRating map[string]float64
}

func newMemRepo() *memRepo {
	return &memRepo{reviews: map[string]Review{}, avgRating: map[string]float64{}}
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memRepo) Get(_ context.Context, id string) (*Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rv, ok := m.reviews[id]
	if !ok {
		return nil, NotFound(id)
	}
	return &rv, nil
}

func (m *memRepo) List(_ context.Context, bootcampID string, _ shared.ListParams) ([]Review, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Review
	for _, rv := range m.reviews {
		if bootcampID == "" || rv.BootcampID == bootcampID {
			out = append(out, rv)
		}
	}
	return out, len(out), nil
}

func (m *memRepo) Create(_ context.Context, rv *Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reviews {
		if existing.BootcampID == rv.BootcampID && existing.UserID == rv.UserID {
			return shared.Errorf(shared.ErrValidation, "Duplicate field value entered")
		}
	}
	m.reviews[rv.ID] = *rv
	return nil
}

func (m *memRepo) Update(_ context.Context, rv *Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews[rv.ID] = *rv
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reviews, id)
	return nil
}

func (m *memRepo) RefreshAverageRating(_ context.Context, bootcampID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum, n := 0, 0
	for _, rv := range m.reviews {
		if rv.BootcampID == bootcampID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		delete(m.avgRating, bootcampID)
		return nil
	}
	m.avgRating[bootcampID] = float64(sum) / float64(n)
	return nil
}

type lookup map[string]bootcamps.Bootcamp

func (l lookup) Get(_ context.Context, id string) (*bootcamps.Bootcamp, error) {
	b, ok := l[id]
	if !ok {
		return nil, bootcamps.NotFound(id)
	}
	return &b, nil
}

var (
	u1    = shared.Principal{ID: "u1", Role: shared.RoleStandard}
	u2    = shared.Principal{ID: "u2", Role: shared.RoleStandard}
	admin = shared.Principal{ID: "a1", Role: shared.RoleAdmin}
)

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, lookup{"b1": {ID: "b1", UserID: "owner", Name: "Devworks"}}), repo
}

func TestOneReviewPerUserPerBootcamp(t *testing.T) {
	svc, repo := newTestService()
	_, err := svc.Create(context.Background(), u1, "b1", Input{Title: "Great", Text: "Loved it", Rating: 8})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), u1, "b1", Input{Title: "Again", Text: "Still", Rating: 2})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), u2, "b1", Input{Title: "Meh", Text: "Ok", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, 6.0, repo.avgRating["b1"])

	_, err = svc.Create(context.Background(), u2, "nope", Input{Title: "x", Text: "y", Rating: 1})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReviewOwnership(t *testing.T) {
	svc, repo := newTestService()
	rv, err := svc.Create(context.Background(), u1, "b1", Input{Title: "Great", Text: "Loved it", Rating: 8})
	require.NoError(t, err)

	ten := 10
	_, err = svc.Update(context.Background(), u2, rv.ID, Patch{Rating: &ten})
	require.ErrorIs(t, err, shared.ErrForbidden)

	updated, err := svc.Update(context.Background(), u1, rv.ID, Patch{Rating: &ten})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Rating)
	assert.Equal(t, 10.0, repo.avgRating["b1"])

	require.ErrorIs(t, svc.Delete(context.Background(), u2, rv.ID), shared.ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), admin, rv.ID))
	assert.NotContains(t, repo.avgRating, "b1")
}
