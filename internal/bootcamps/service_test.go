package bootcamps

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devcamper/devcamper-api/internal/platform/geocode"
	"github.com/devcamper/devcamper-api/internal/shared"
)

type memRepo struct {
	mu    sync.Mutex
	items map[string]Bootcamp
	// radius records the last WithinRadius arguments.
	radius [3]float64
}

func newMemRepo() *memRepo { return &memRepo{items: map[string]Bootcamp{}} }

func (m *memRepo) Get(_ context.Context, id string) (*Bootcamp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return nil, NotFound(id)
	}
	return &b, nil
}

func (m *memRepo) CountByUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.items {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) Create(_ context.Context, b *Bootcamp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Name == b.Name {
			return shared.Errorf(shared.ErrValidation, "Duplicate field value entered")
		}
	}
	m.items[b.ID] = *b
	return nil
}

func (m *memRepo) Update(_ context.Context, b *Bootcamp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[b.ID]; !ok {
		return NotFound(b.ID)
	}
	m.items[b.ID] = *b
	return nil
}

func (m *memRepo) SetPhoto(_ context.Context, id, photo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.items[id]
	b.Photo = photo
	m.items[id] = b
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *memRepo) List(_ context.Context, _ Filter, p shared.ListParams) ([]Bootcamp, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Bootcamp, 0, len(m.items))
	for _, b := range m.items {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	start := min(p.Offset(), len(out))
	end := min(start+p.Limit, len(out))
	return out[start:end], len(out), nil
}

func (m *memRepo) WithinRadius(_ context.Context, lat, lng, miles float64) ([]Bootcamp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.radius = [3]float64{lat, lng, miles}
	return []Bootcamp{}, nil
}

type stubGeocoder map[string]geocode.Location

func (s stubGeocoder) Geocode(_ context.Context, address string) (geocode.Location, error) {
	loc, ok := s[address]
	if !ok {
		return geocode.Location{}, geocode.ErrNoMatch
	}
	return loc, nil
}

type memStore struct {
	objects map[string][]byte
	err     error
}

func (m *memStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

var (
	owner    = shared.Principal{ID: "u1", Role: shared.RoleStandard}
	stranger = shared.Principal{ID: "u2", Role: shared.RoleStandard}
	admin    = shared.Principal{ID: "a1", Role: shared.RoleAdmin}

	boston = geocode.Location{Latitude: 42.35, Longitude: -71.06, City: "Boston", State: "MA", Zipcode: "02118"}
)

func newTestService() (*Service, *memRepo, *memStore) {
	repo := newMemRepo()
	store := &memStore{objects: map[string][]byte{}}
	geo := stubGeocoder{"233 Bay State Rd Boston MA 02215": boston, "02118": boston}
	return NewService(repo, geo, store, 1000, nil), repo, store
}

func sampleInput(name string) Input {
	return Input{
		Name:        name,
		Description: "Full stack web development",
		Address:     "233 Bay State Rd Boston MA 02215",
		Careers:     []string{"Web Development"},
		Housing:     true,
	}
}

func TestCreateGeocodesAndSlugs(t *testing.T) {
	svc, _, _ := newTestService()
	b, err := svc.Create(context.Background(), owner, sampleInput("Devworks Bootcamp"))
	require.NoError(t, err)
	assert.Equal(t, "devworks-bootcamp", b.Slug)
	assert.Equal(t, "u1", b.UserID)
	assert.Equal(t, boston, b.Location)
	assert.Equal(t, DefaultPhoto, b.Photo)
}

func TestCreateOnePerStandardUser(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), owner, sampleInput("First"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), owner, sampleInput("Second"))
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "The user with ID u1 has already published a bootcamp", shared.Message(err))

	_, err = svc.Create(context.Background(), admin, sampleInput("Admin One"))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), admin, sampleInput("Admin Two"))
	require.NoError(t, err)
}

func TestCreateRejectsUnknownAddress(t *testing.T) {
	svc, _, _ := newTestService()
	in := sampleInput("Lost")
	in.Address = "nowhere"
	_, err := svc.Create(context.Background(), owner, in)
	require.ErrorIs(t, err, shared.ErrValidation)
	require.ErrorIs(t, err, geocode.ErrNoMatch)
}

func TestUpdateRequiresOwnership(t *testing.T) {
	svc, repo, _ := newTestService()
	b, err := svc.Create(context.Background(), owner, sampleInput("Devworks"))
	require.NoError(t, err)

	name := "Devworks Reloaded"
	_, err = svc.Update(context.Background(), stranger, b.ID, Patch{Name: &name})
	require.ErrorIs(t, err, shared.ErrForbidden)
	assert.Equal(t, "Devworks", repo.items[b.ID].Name)

	updated, err := svc.Update(context.Background(), owner, b.ID, Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "devworks-reloaded", updated.Slug)
	assert.True(t, updated.Housing)

	no := false
	updated, err = svc.Update(context.Background(), admin, b.ID, Patch{Housing: &no})
	require.NoError(t, err)
	assert.False(t, updated.Housing)

	bad := []string{"Cooking"}
	_, err = svc.Update(context.Background(), owner, b.ID, Patch{Careers: &bad})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestDeleteRequiresOwnership(t *testing.T) {
	svc, repo, _ := newTestService()
	b, err := svc.Create(context.Background(), owner, sampleInput("Devworks"))
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), stranger, b.ID), shared.ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), owner, b.ID))
	assert.Empty(t, repo.items)
	require.ErrorIs(t, svc.Delete(context.Background(), owner, b.ID), shared.ErrNotFound)
}

func TestWithinRadius(t *testing.T) {
	svc, repo, _ := newTestService()
	_, err := svc.WithinRadius(context.Background(), "02118", 10)
	require.NoError(t, err)
	assert.Equal(t, [3]float64{42.35, -71.06, 10}, repo.radius)

	_, err = svc.WithinRadius(context.Background(), "99999", 10)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUploadPhoto(t *testing.T) {
	svc, repo, store := newTestService()
	b, err := svc.Create(context.Background(), owner, sampleInput("Devworks"))
	require.NoError(t, err)

	img := func(ct string, size int) Upload {
		return Upload{Filename: "me.png", ContentType: ct, Size: int64(size), Body: bytes.NewReader(make([]byte, size))}
	}

	_, err = svc.UploadPhoto(context.Background(), stranger, b.ID, img("image/png", 10))
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.UploadPhoto(context.Background(), owner, b.ID, Upload{})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "Please upload a file", shared.Message(err))

	_, err = svc.UploadPhoto(context.Background(), owner, b.ID, img("text/plain", 10))
	assert.Equal(t, "Please upload an image file", shared.Message(err))

	_, err = svc.UploadPhoto(context.Background(), owner, b.ID, img("image/png", 1001))
	assert.Equal(t, "Please upload an image file less than 1000", shared.Message(err))

	name, err := svc.UploadPhoto(context.Background(), owner, b.ID, img("image/png", 1000))
	require.NoError(t, err)
	assert.Equal(t, "photo_"+b.ID+".png", name)
	assert.Len(t, store.objects[name], 1000)
	assert.Equal(t, name, repo.items[b.ID].Photo)

	store.err = errors.New("bucket gone")
	_, err = svc.UploadPhoto(context.Background(), admin, b.ID, img("image/jpeg", 1))
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrValidation)
}
