package gate

import (
	"context"
	"log/slog"
)

// AuthContext is the identity attached to an admitted request. It lives only
// as long as the request's context.
type AuthContext struct {
	SubjectID         string `json:"subject_id"`
	Role              string `json:"role,omitempty"`
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
}

func (a AuthContext) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("subject", a.SubjectID),
		slog.String("role", a.Role),
	)
}

// HasRole reports whether the context carries any of roles
func (a AuthContext) HasRole(roles ...string) bool {
	for _, role := range roles {
		if a.Role == role {
			return true
		}
	}
	return false
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "devicegate context value " + k.name
}

var authContextKey = &contextKey{"AuthContext"}

// WithAuthContext returns a copy of ctx carrying authCtx
func WithAuthContext(ctx context.Context, authCtx AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

// FromContext returns the AuthContext attached by the gate
func FromContext(ctx context.Context) (AuthContext, bool) {
	authCtx, ok := ctx.Value(authContextKey).(AuthContext)
	return authCtx, ok
}
