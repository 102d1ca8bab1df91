package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/devcamper/devcamper-api/internal/platform/httpx"
	"github.com/devcamper/devcamper-api/internal/shared"
)

type userContextKey struct{}

// UserFromContext returns the user loaded by Protect.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*User)
	return u, ok
}

// Middleware guards routes with session tokens and roles.
type Middleware struct {
	service *Service
	logger  *slog.Logger
}

// NewMiddleware constructs a Middleware.
func NewMiddleware(service *Service, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{service: service, logger: logger}
}

// Protect rejects requests without a valid session token for an existing user.
func (m *Middleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			httpx.RespondError(w, notAuthorized(nil))
			return
		}
		user, err := m.service.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, shared.ErrInvalidToken) && !errors.Is(err, shared.ErrNotFound) {
				m.logger.Error("authenticate request", slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			httpx.RespondError(w, notAuthorized(err))
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), user.Principal())
		ctx = context.WithValue(ctx, userContextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole admits only principals holding one of roles. It must run after Protect.
func (m *Middleware) RequireRole(roles ...shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := shared.PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, notAuthorized(nil))
				return
			}
			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.RespondError(w, shared.Errorf(shared.ErrForbidden, "User role %s is not authorized to access this route", principal.Role))
		})
	}
}

func notAuthorized(cause error) error {
	return shared.Wrap(shared.ErrUnauthorized, cause, "Not authorized to access this route")
}
