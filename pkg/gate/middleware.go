package gate

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// ErrorResponse is the body of every rejection
type ErrorResponse struct {
	Error string `json:"error"`
}

// Middleware admits a request to next only when Evaluate authorizes it. The
// AuthContext is attached to the request context for downstream handlers.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := g.Evaluate(r)
		if !decision.Authorized {
			logRejection(r, decision)
			writeError(w, r, decision.Status, decision.Message)
			return
		}

		slog.Debug("Request authorized", "auth", decision.Context)
		next.ServeHTTP(w, r.WithContext(WithAuthContext(r.Context(), decision.Context)))
	})
}

// RequireRole returns a middleware that checks the AuthContext carries any of
// the specified roles. Must be used after Gate.Middleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, ok := FromContext(r.Context())
			if !ok {
				slog.Debug("Unauthenticated request to role-protected resource", "requiredRoles", roles)
				writeError(w, r, http.StatusUnauthorized, MsgNoToken)
				return
			}

			if !authCtx.HasRole(roles...) {
				slog.Warn("User lacks required role",
					"subject", authCtx.SubjectID,
					"role", authCtx.Role,
					"requiredRoles", roles)
				writeError(w, r, http.StatusForbidden, "Forbidden: insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

// logRejection keeps credential problems and device conflicts below warn.
// Store faults are logged at error by the binding service.
func logRejection(r *http.Request, decision Decision) {
	attrs := []any{"status", decision.Status, "path", r.URL.Path, "err", decision.Err}
	switch {
	case decision.Status >= http.StatusInternalServerError:
		slog.Warn("Request rejected: device lock failed", attrs...)
	case decision.Status == http.StatusForbidden:
		slog.Info("Request rejected: device conflict", attrs...)
	default:
		slog.Debug("Request rejected", attrs...)
	}
}
