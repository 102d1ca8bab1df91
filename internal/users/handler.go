package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devcamper/devcamper-api/internal/auth"
	"github.com/devcamper/devcamper-api/internal/platform/httpx"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// Handler manages the admin user endpoints.
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

// MountRoutes registers user routes. Every route requires an admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.auth.Protect, h.auth.RequireRole(shared.RoleAdmin))
	r.Get("/", h.listUsers)
	r.Post("/", h.createUser)
	r.Get("/{id}", h.getUser)
	r.Put("/{id}", h.updateUser)
	r.Delete("/{id}", h.deleteUser)
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=standard admin"`
}

type updateUserRequest struct {
	Name  string `json:"name" validate:"omitempty,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
	Role  string `json:"role" validate:"omitempty,oneof=standard admin"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	params := shared.ParseListParams(r.URL.Query(), sortableColumns, shared.SortField{Column: "created_at", Desc: true})
	users, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httpx.Fail(w, h.logger, "list users", err)
		return
	}
	pagination := shared.NewPagination(params, total)
	httpx.List(w, len(users), &pagination, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, h.logger, "get user", err)
		return
	}
	httpx.Data(w, http.StatusOK, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}
	user, err := h.service.Create(r.Context(), CreateInput(req))
	if err != nil {
		httpx.Fail(w, h.logger, "create user", err)
		return
	}
	httpx.Data(w, http.StatusCreated, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}
	user, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), UpdateInput(req))
	if err != nil {
		httpx.Fail(w, h.logger, "update user", err)
		return
	}
	httpx.Data(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.Fail(w, h.logger, "delete user", err)
		return
	}
	httpx.Empty(w)
}
