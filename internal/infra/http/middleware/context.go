package middleware

import (
	"context"
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type contextKey struct{ name string }

var (
	userKey     = &contextKey{"user"}
	peerAddrKey = &contextKey{"peer-addr"}
)

// WithUser attaches the authenticated user to ctx.
func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user attached by RequireAuth, or nil.
func UserFromContext(ctx context.Context) *entity.User {
	user, _ := ctx.Value(userKey).(*entity.User)
	return user
}

// UserID returns the id of the authenticated user or "".
func UserID(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.ID
	}
	return ""
}

// KeepPeerAddr records the socket address of the request. It must run before
// chi's RealIP, which overwrites RemoteAddr with client supplied headers.
func KeepPeerAddr(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerAddrKey, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
