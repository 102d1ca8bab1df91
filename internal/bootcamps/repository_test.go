package bootcamps

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devcamper/devcamper-api/internal/shared"
)

const bootcampID = "1b6f1d0e-7a52-4c55-8e2e-3c1d0d1b2a11"

var bootcampCols = []string{"id", "user_id", "name", "slug", "description", "website", "phone", "email", "address",
	"latitude", "longitude", "formatted_address", "street", "city", "state", "zipcode", "country",
	"careers", "average_rating", "average_cost", "photo", "housing", "job_assistance", "job_guarantee", "accept_gi", "created_at"}

func bootcampRow() *pgxmock.Rows {
	cost := 10000.0
	return pgxmock.NewRows(bootcampCols).AddRow(
		bootcampID, "u1", "Devworks", "devworks", "desc", "", "", "", "addr",
		42.35, -71.06, "Boston, MA", "", "Boston", "MA", "02118", "US",
		[]string{"Web Development"}, (*float64)(nil), &cost, DefaultPhoto, true, false, false, false,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func TestRepositoryGet(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`FROM bootcamps WHERE id = \$1`).WithArgs(bootcampID).WillReturnRows(bootcampRow())

	b, err := repo.Get(context.Background(), bootcampID)
	require.NoError(t, err)
	assert.Equal(t, "Boston", b.Location.City)
	assert.Nil(t, b.AverageRating)
	require.NotNil(t, b.AverageCost)
	assert.Equal(t, 10000.0, *b.AverageCost)

	_, err = repo.Get(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "Bootcamp not found with id of not-a-uuid", shared.Message(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListBuildsFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	yes := true
	f := Filter{
		Career:      "UI/UX",
		Housing:     &yes,
		AverageCost: []shared.RangeTerm{{Op: "<=", Value: 10000}},
	}
	params := shared.ListParams{Page: 1, Limit: 5, Sort: []shared.SortField{{Column: "average_cost", Desc: true}}}

	mock.ExpectQuery(`SELECT count\(\*\) FROM bootcamps WHERE \$1 = ANY\(careers\) AND housing = \$2 AND average_cost <= \$3`).
		WithArgs("UI/UX", true, 10000.0).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`WHERE \$1 = ANY\(careers\) AND housing = \$2 AND average_cost <= \$3 ORDER BY average_cost DESC LIMIT \$4 OFFSET \$5`).
		WithArgs("UI/UX", true, 10000.0, 5, 0).
		WillReturnRows(bootcampRow())

	items, total, err := repo.List(context.Background(), f, params)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryWithinRadius(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`asin`).WithArgs(42.35, -71.06, 25.0, EarthRadiusMiles).WillReturnRows(bootcampRow())

	items, err := repo.WithinRadius(context.Background(), 42.35, -71.06, 25)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateDuplicateName(t *testing.T) {
	repo, mock := newMockRepo(t)
	args := []any{bootcampID}
	for range 23 {
		args = append(args, pgxmock.AnyArg())
	}
	mock.ExpectExec(`INSERT INTO bootcamps`).WithArgs(args...).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &Bootcamp{ID: bootcampID, Careers: []string{"Other"}})
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "Duplicate field value entered", shared.Message(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshAverages(t *testing.T) {
	_, mock := newMockRepo(t)
	mock.ExpectExec(`SET average_cost =\s+\(SELECT ceil\(avg\(tuition\) / 10\) \* 10 FROM courses`).
		WithArgs(bootcampID).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`SET average_rating =\s+\(SELECT avg\(rating\) FROM reviews`).
		WithArgs(bootcampID).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, RefreshAverageCost(context.Background(), mock, bootcampID))
	require.NoError(t, RefreshAverageRating(context.Background(), mock, bootcampID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
