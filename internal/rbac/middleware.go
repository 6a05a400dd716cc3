package rbac

import (
	"net/http"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// RequireRole guards a route subtree so only the named roles (or roles that
// outrank them) reach the handlers. Missing identity responds 401, an
// insufficient role 403.
func RequireRole(roles ...shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := shared.UserFromContext(r.Context())
			if actor == nil {
				httpx.RespondError(w, shared.ErrInvalidCredentials)
				return
			}
			if !Satisfies(actor.Role, roles...) {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
