package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListParams(t *testing.T) {
	sortable := map[string]string{"name": "name", "createdAt": "created_at"}
	fallback := SortField{Column: "created_at", Desc: true}

	p := ParseListParams(url.Values{}, sortable, fallback)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, "created_at DESC", p.OrderBy())

	q := url.Values{"page": {"3"}, "limit": {"500"}, "sort": {"-name,bogus,createdAt"}}
	p = ParseListParams(q, sortable, fallback)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 200, p.Offset())
	assert.Equal(t, "name DESC, created_at ASC", p.OrderBy())
}

func TestNewPagination(t *testing.T) {
	first := NewPagination(ListParams{Page: 1, Limit: 10}, 25)
	assert.Nil(t, first.Prev)
	assert.Equal(t, &PageRef{Page: 2, Limit: 10}, first.Next)

	last := NewPagination(ListParams{Page: 3, Limit: 10}, 25)
	assert.Nil(t, last.Next)
	assert.Equal(t, &PageRef{Page: 2, Limit: 10}, last.Prev)
}

func TestParseRange(t *testing.T) {
	q := url.Values{"averageCost[lte]": {"1000"}, "averageCost[gt]": {"5"}, "other": {"x"}}
	terms, err := ParseRange(q, "averageCost")
	require.NoError(t, err)
	assert.ElementsMatch(t, []RangeTerm{{Op: "<=", Value: 1000}, {Op: ">", Value: 5}}, terms)

	_, err = ParseRange(url.Values{"tuition[gte]": {"abc"}}, "tuition")
	require.ErrorIs(t, err, ErrValidation)

	terms, err = ParseRange(url.Values{"tuition": {"10"}}, "tuition")
	require.NoError(t, err)
	assert.Equal(t, []RangeTerm{{Op: "=", Value: 10}}, terms)
}

func TestParseBool(t *testing.T) {
	v, err := ParseBool(url.Values{"housing": {"true"}}, "housing")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, *v)

	v, err = ParseBool(url.Values{}, "housing")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = ParseBool(url.Values{"housing": {"maybe"}}, "housing")
	require.ErrorIs(t, err, ErrValidation)
}
