package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved user in the request context.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.Authenticate(r.Context(), extractBearer(r.Header.Get("Authorization")))
			if err != nil {
				status, message := http.StatusUnauthorized, err.Error()
				if !usecase.HasCode(err, usecase.CodeUnauthenticated) {
					log.Printf("❌ auth guard: %v", err)
					status, message = http.StatusInternalServerError, "Internal server error"
				}
				RecordAuthAttempt("guard", "rejected")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				json.NewEncoder(w).Encode(errorBody{Success: false, Message: message})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// extractBearer returns the token of an "Authorization: Bearer <token>" header.
func extractBearer(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
