package identity

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskdeck/taskdeck/internal/platform/httpx"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Authenticator verifies bearer tokens and stashes the resulting
// AuthenticatedUser in the request context.
type Authenticator struct {
	Issuer      *Issuer
	Revocations *RevocationList
	Logger      *slog.Logger
}

// Middleware rejects requests without a valid, unrevoked bearer token.
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		user, claims, err := a.Issuer.Verify(raw)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}
		if a.Revocations != nil && a.Revocations.IsRevoked(r.Context(), claims.ID) {
			a.Logger.Warn("revoked token presented", slog.Int64("user_id", user.ID))
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "token has been revoked")
			return
		}
		ctx := shared.ContextWithUser(r.Context(), &user)
		ctx = contextWithClaims(ctx, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
