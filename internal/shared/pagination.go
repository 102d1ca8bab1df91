package shared

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// SortField is one ORDER BY term resolved against an allow-list.
type SortField struct {
	Column string
	Desc   bool
}

// ListParams captures pagination and sorting for list endpoints.
type ListParams struct {
	Page  int
	Limit int
	Sort  []SortField
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderBy renders the sort fields as an ORDER BY clause body.
func (p ListParams) OrderBy() string {
	parts := make([]string, 0, len(p.Sort))
	for _, f := range p.Sort {
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		parts = append(parts, f.Column+" "+dir)
	}
	return strings.Join(parts, ", ")
}

// ParseListParams reads page, limit and sort from the query. sortable maps
// API field names to column names; unknown fields are ignored. An empty
// sort falls back to fallback.
func ParseListParams(q url.Values, sortable map[string]string, fallback SortField) ListParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	params := ListParams{Page: page, Limit: limit}
	for _, raw := range strings.Split(q.Get("sort"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		desc := strings.HasPrefix(raw, "-")
		column, ok := sortable[strings.TrimPrefix(raw, "-")]
		if !ok {
			continue
		}
		params.Sort = append(params.Sort, SortField{Column: column, Desc: desc})
	}
	if len(params.Sort) == 0 {
		params.Sort = []SortField{fallback}
	}
	return params
}

// PageRef points at an adjacent page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination contains links to adjacent pages.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// NewPagination computes adjacent page links for total matching rows.
func NewPagination(p ListParams, total int) Pagination {
	var out Pagination
	if p.Page*p.Limit < total {
		out.Next = &PageRef{Page: p.Page + 1, Limit: p.Limit}
	}
	if p.Offset() > 0 {
		out.Prev = &PageRef{Page: p.Page - 1, Limit: p.Limit}
	}
	return out
}
