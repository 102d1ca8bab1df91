package bootcamps

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/devcamper/devcamper-api/internal/auth"
	"github.com/devcamper/devcamper-api/internal/platform/httpx"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// Handler exposes the bootcamp endpoints.
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

// MountRoutes registers bootcamp routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/radius/{zipcode}/{distance}", h.withinRadius)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Protect, h.auth.RequireRole(shared.RoleStandard, shared.RoleAdmin))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Put("/{id}/photo", h.uploadPhoto)
	})
}

func parseFilter(q url.Values) (Filter, error) {
	f := Filter{Career: q.Get("careers"), State: q.Get("location.state"), City: q.Get("location.city")}
	var err error
	for field, dst := range map[string]**bool{
		"housing":       &f.Housing,
		"jobAssistance": &f.JobAssistance,
		"jobGuarantee":  &f.JobGuarantee,
		"acceptGi":      &f.AcceptGI,
	} {
		if *dst, err = shared.ParseBool(q, field); err != nil {
			return Filter{}, err
		}
	}
	if f.AverageCost, err = shared.ParseRange(q, "averageCost"); err != nil {
		return Filter{}, err
	}
	if f.AverageRating, err = shared.ParseRange(q, "averageRating"); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseFilter(q)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	params := shared.ParseListParams(q, SortableColumns, shared.SortField{Column: "created_at", Desc: true})
	items, total, err := h.service.List(r.Context(), filter, params)
	if err != nil {
		httpx.Fail(w, h.logger, "list bootcamps", err)
		return
	}
	pagination := shared.NewPagination(params, total)
	httpx.List(w, len(items), &pagination, items)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, h.logger, "get bootcamp", err)
		return
	}
	httpx.Data(w, http.StatusOK, b)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if !h.validator.Bind(w, r, &in) {
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	b, err := h.service.Create(r.Context(), actor, in)
	if err != nil {
		httpx.Fail(w, h.logger, "create bootcamp", err)
		return
	}
	httpx.Data(w, http.StatusCreated, b)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var p Patch
	if !h.validator.Bind(w, r, &p) {
		return
	}
	actor, _ := shared.PrincipalFromContext(r.Context())
	b, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), p)
	if err != nil {
		httpx.Fail(w, h.logger, "update bootcamp", err)
		return
	}
	httpx.Data(w, http.StatusOK, b)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httpx.Fail(w, h.logger, "delete bootcamp", err)
		return
	}
	httpx.Empty(w)
}

func (h *Handler) withinRadius(w http.ResponseWriter, r *http.Request) {
	miles, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
	if err != nil {
		httpx.RespondError(w, shared.Errorf(shared.ErrValidation, "Distance must be a number"))
		return
	}
	items, err := h.service.WithinRadius(r.Context(), chi.URLParam(r, "zipcode"), miles)
	if err != nil {
		httpx.Fail(w, h.logger, "bootcamps in radius", err)
		return
	}
	httpx.List(w, len(items), nil, items)
}

const multipartOverhead = 1 << 20

func (h *Handler) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if h.service.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.service.maxUploadSize+multipartOverhead)
	}

	up := Upload{}
	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		up = Upload{Filename: header.Filename, ContentType: header.Header.Get("Content-Type"), Size: header.Size, Body: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.RespondError(w, shared.Errorf(shared.ErrValidation, "Please upload an image file less than %d", h.service.maxUploadSize))
			return
		}
		httpx.RespondError(w, shared.Wrap(shared.ErrValidation, err, "Please upload a file"))
		return
	}

	name, err := h.service.UploadPhoto(r.Context(), actor, id, up)
	if err != nil {
		httpx.Fail(w, h.logger, "upload bootcamp photo", err)
		return
	}
	httpx.Data(w, http.StatusOK, name)
}
