package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devcamper/devcamper-api/internal/platform/httpx"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	middleware *Middleware
	validator  *httpx.Validator
	cfg        Config
	now        func() time.Time
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw *Middleware, cfg Config) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:     logger,
		service:    service,
		middleware: mw,
		validator:  httpx.NewValidator(),
		cfg:        cfg,
		now:        service.now,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Get("/logout", h.handleLogout)
	r.Post("/forgotpassword", h.handleForgotPassword)
	r.Put("/resetpassword/{resettoken}", h.handleResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(h.middleware.Protect)
		r.Get("/me", h.handleMe)
		r.Put("/updatedetails", h.handleUpdateDetails)
		r.Put("/updatepassword", h.handleUpdatePassword)
	})
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=standard admin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateDetailsRequest struct {
	Name  string `json:"name" validate:"omitempty,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}
	res, err := h.service.Register(r.Context(), RegisterInput(req))
	if err != nil {
		httpx.Fail(w, h.logger, "register", err)
		return
	}
	h.sendToken(w, http.StatusOK, res)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Fail(w, h.logger, "login", err)
		return
	}
	h.sendToken(w, http.StatusOK, res)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, logoutCookie(h.cfg, h.now()))
	httpx.Empty(w)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, notAuthorized(nil))
		return
	}
	httpx.Data(w, http.StatusOK, user)
}

func (h *Handler) handleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req updateDetailsRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}
	user, _ := UserFromContext(r.Context())
	updated, err := h.service.UpdateDetails(r.Context(), user.ID, req.Name, req.Email)
	if err != nil {
		httpx.Fail(w, h.logger, "update details", err)
		return
	}
	httpx.Data(w, http.StatusOK, updated)
}

func (h *Handler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}
	user, _ := UserFromContext(r.Context())
	res, err := h.service.UpdatePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		httpx.Fail(w, h.logger, "update password", err)
		return
	}
	h.sendToken(w, http.StatusOK, res)
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}
	if _, err := h.service.ForgotPassword(r.Context(), req.Email, h.baseURL(r)); err != nil {
		httpx.Fail(w, h.logger, "forgot password", err)
		return
	}
	httpx.Data(w, http.StatusOK, "Email sent")
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.validator.Bind(w, r, &req) {
		return
	}
	res, err := h.service.ResetPassword(r.Context(), chi.URLParam(r, "resettoken"), req.Password)
	if err != nil {
		httpx.Fail(w, h.logger, "reset password", err)
		return
	}
	h.sendToken(w, http.StatusOK, res)
}

func (h *Handler) sendToken(w http.ResponseWriter, status int, res *Result) {
	http.SetCookie(w, sessionCookie(h.cfg, res.Token.Value, h.now()))
	httpx.JSON(w, status, httpx.Envelope{Success: true, Token: res.Token.Value})
}

func (h *Handler) baseURL(r *http.Request) string {
	if h.cfg.BaseURL != "" {
		return h.cfg.BaseURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
