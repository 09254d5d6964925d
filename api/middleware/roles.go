package middleware

import (
	"net/http"

	"github.com/aurelia-jewels/aurelia-backend/api/responses"
	pkgerrors "github.com/aurelia-jewels/aurelia-backend/pkg/errors"
	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
)

// RequireRole gates the admin surface on the role seeded by Auth, so it
// must run after it in the chain.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := RoleFromContext(r.Context())
			if actor == role {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"required_role": role,
					"actor_role":    actor,
					"path":          r.URL.Path,
				})
				logg.Warn(ctx, "role.denied")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
		})
	}
}
