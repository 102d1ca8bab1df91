package courses

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devcamper/devcamper-api/internal/auth"
	"github.com/devcamper/devcamper-api/internal/platform/httpx"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// Handler exposes the course endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	auth      *auth.Middleware
	validator *httpx.Validator
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw *auth.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, auth: mw, validator: httpx.NewValidator()}
}

// MountRoutes registers the top-level /courses routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Protect, h.auth.RequireRole(shared.RoleStandard, shared.RoleAdmin))
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

// MountBootcampRoutes registers routes nested under /bootcamps/{id}/courses.
func (h *Handler) MountBootcampRoutes(r chi.Router) {
	r.Get("/", h.listByBootcamp)
	r.With(h.auth.Protect, h.auth.RequireRole(shared.RoleStandard, shared.RoleAdmin)).Post("/", h.create)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tuition, err := shared.ParseRange(q, "tuition")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	params := shared.ParseListParams(q, SortableColumns, DefaultSort)
	items, total, err := h.service.List(r.Context(), Filter{MinimumSkill: q.Get("minimumSkill"), Tuition: tuition}, params)
	if err != nil {
		httpx.Fail(w, h.logger, "list courses", err)
		return
	}
	pagination := shared.NewPagination(params, total)
	httpx.List(w, len(items), &pagination, items)
}

func (h *Handler) listByBootcamp(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListByBootcamp(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, h.logger, "list bootcamp courses", err)
		return
	}
	httpx.List(w, len(items), nil, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, h.logger, "get course", err)
		return
	}
	httpx.Data(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if !h.validator.Bind(w, r, &in) {
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	c, err := h.service.Create(r.Context(), actor, chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.Fail(w, h.logger, "create course", err)
		return
	}
	httpx.Data(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var p Patch
	if !h.validator.Bind(w, r, &p) {
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	c, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), p)
	if err != nil {
		httpx.Fail(w, h.logger, "update course", err)
		return
	}
	httpx.Data(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httpx.Fail(w, h.logger, "delete course", err)
		return
	}
	httpx.Empty(w)
}
