package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Mranger2024/plasticwatcha/pkg/handlers"
)

type contextKey struct{}

var principalKey contextKey

// FromContext returns the Principal stored in the request context.
// An absent principal yields the anonymous Principal.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey).(Principal); ok {
		return p
	}
	return Principal{}
}

// WithPrincipal returns a context carrying the given principal.
// Exposed for handler tests.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Authenticate returns middleware that resolves a bearer token into a
// Principal. Requests without an Authorization header proceed anonymously;
// requests with an invalid token are rejected. Handlers decide per-route
// whether an anonymous caller is acceptable.
func Authenticate(sys System, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("middleware", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := sys.Verify(r.Context(), raw)
			if err != nil {
				handlers.RespondError(w, logger, MapHTTPStatus(err), err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequirePrincipal returns the caller's principal, responding 401 and
// returning false when the caller is anonymous.
func RequirePrincipal(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (Principal, bool) {
	p := FromContext(r.Context())
	if p.Anonymous() {
		handlers.RespondError(w, logger, http.StatusUnauthorized, ErrUnauthenticated)
		return Principal{}, false
	}
	return p, true
}

// RequireAdmin returns the caller's principal, responding 401 for anonymous
// callers and 403 for authenticated non-admins.
func RequireAdmin(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (Principal, bool) {
	p, ok := RequirePrincipal(w, r, logger)
	if !ok {
		return Principal{}, false
	}
	if !p.IsAdmin() {
		handlers.RespondError(w, logger, http.StatusForbidden, ErrForbidden)
		return Principal{}, false
	}
	return p, true
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
