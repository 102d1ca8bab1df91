package courses

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devcamper/devcamper-api/internal/auth/authtest"
	"github.com/devcamper/devcamper-api/internal/shared"
	_ "github.com/devcamper/devcamper-api/testing"
)

func TestCourseRoutes(t *testing.T) {
	svc, _ := newTestService()
	a := authtest.New(t)
	ownerTok := a.Login(t, "u1", shared.RoleStandard)
	strangerTok := a.Login(t, "u2", shared.RoleStandard)

	h := NewHandler(nil, svc, a.Middleware)
	r := chi.NewRouter()
	r.Route("/api/v1/bootcamps/{id}/courses", h.MountBootcampRoutes)
	r.Route("/api/v1/courses", h.MountRoutes)

	call := func(method, path, token, body string) (int, map[string]any) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		var out map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return rec.Code, out
	}

	body := `{"title":"Front End","description":"HTML","weeks":"8","tuition":8000,"minimumSkill":"beginner"}`

	code, out := call(http.MethodPost, "/api/v1/bootcamps/b1/courses", strangerTok, body)
	require.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, false, out["success"])

	code, out = call(http.MethodPost, "/api/v1/bootcamps/b1/courses", ownerTok, `{"title":"x","description":"y","weeks":"1","minimumSkill":"guru"}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, out["error"], "tuition")

	code, out = call(http.MethodPost, "/api/v1/bootcamps/b1/courses", ownerTok, body)
	require.Equal(t, http.StatusCreated, code)
	id := out["data"].(map[string]any)["id"].(string)

	code, out = call(http.MethodGet, "/api/v1/bootcamps/b1/courses", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, out["count"])
	assert.Nil(t, out["pagination"])

	code, _ = call(http.MethodGet, "/api/v1/bootcamps/zzz/courses", "", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, out = call(http.MethodPut, "/api/v1/courses/"+id, ownerTok, `{"weeks":"12"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "12", out["data"].(map[string]any)["weeks"])

	code, _ = call(http.MethodGet, "/api/v1/courses?tuition[lte]=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = call(http.MethodGet, "/api/v1/courses", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, out["count"])

	code, _ = call(http.MethodDelete, "/api/v1/courses/"+id, strangerTok, "")
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = call(http.MethodDelete, "/api/v1/courses/"+id, ownerTok, "")
	assert.Equal(t, http.StatusOK, code)

	code, out = call(http.MethodGet, "/api/v1/courses/"+id, "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No course with the id of "+id, out["error"])
}
