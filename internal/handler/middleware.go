package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lumapay/paylink/internal/service"
	"github.com/lumapay/paylink/pkg/response"
)

type contextKey string

const principalKey contextKey = "principal_id"

// AuthMiddleware guards routes with redis-backed session tokens. Client and
// admin tokens live in separate scopes and are not interchangeable.
type AuthMiddleware struct {
	sessions *service.SessionStore
}

func NewAuthMiddleware(sessions *service.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

func (m *AuthMiddleware) RequireClient(next http.Handler) http.Handler {
	return m.require(service.SessionScopeClient, next)
}

func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.require(service.SessionScopeAdmin, next)
}

func (m *AuthMiddleware) require(scope string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			response.Unauthorized(w, "Authentication required")
			return
		}

		id, err := m.sessions.Resolve(r.Context(), scope, token)
		if err != nil {
			response.Unauthorized(w, "Session expired or invalid")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the session token from the Authorization header
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// PrincipalID returns the authenticated principal set by the middleware
func PrincipalID(r *http.Request) uuid.UUID {
	if id, ok := r.Context().Value(principalKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
