package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devcamper/devcamper-api/internal/auth"
	"github.com/devcamper/devcamper-api/internal/bootcamps"
	"github.com/devcamper/devcamper-api/internal/courses"
	"github.com/devcamper/devcamper-api/internal/observability"
	"github.com/devcamper/devcamper-api/internal/platform/httpx"
	"github.com/devcamper/devcamper-api/internal/reviews"
	"github.com/devcamper/devcamper-api/internal/shared"
	"github.com/devcamper/devcamper-api/internal/users"
	"github.com/devcamper/devcamper-api/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	BootcampsHandler *bootcamps.Handler
	CoursesHandler   *courses.Handler
	ReviewsHandler   *reviews.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router serving the /api/v1 surface.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondError(w, shared.Errorf(shared.ErrNotFound, "Route %s not found", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusMethodNotAllowed, httpx.ErrorBody{Error: "Method " + r.Method + " not allowed"})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/bootcamps", func(r chi.Router) {
			r.Route("/{id}/courses", params.CoursesHandler.MountBootcampRoutes)
			r.Route("/{id}/reviews", params.ReviewsHandler.MountBootcampRoutes)
			params.BootcampsHandler.MountRoutes(r)
		})
		r.Route("/courses", params.CoursesHandler.MountRoutes)
		r.Route("/reviews", params.ReviewsHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
