package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Rrens/chat-workspace/internal/api/response"
	"github.com/Rrens/chat-workspace/internal/domain"
	"github.com/Rrens/chat-workspace/internal/security"
)

type contextKey string

const (
	ProfileNameKey contextKey = "profileName"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *security.JWTManager
	disabled   bool
}

// NewAuthMiddleware creates a new auth middleware. A disabled middleware lets every request through.
func NewAuthMiddleware(jwtManager *security.JWTManager, disabled bool) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, disabled: disabled}
}

// Authenticate validates the bearer token. EventSource clients cannot set headers,
// so a token query parameter is accepted too.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}

		token := r.URL.Query().Get("token")
		if token == "" {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "invalid authorization header format")
				return
			}
			token = parts[1]
		}

		claims, err := m.jwtManager.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(w, "invalid or expired token: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ProfileNameKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetProfileName gets the authenticated profile name from context
func GetProfileName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ProfileNameKey).(string)
	return name, ok && name != ""
}

// RequireProfile rejects requests until a profile has been set up
func RequireProfile(ready func() bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ready() {
				response.PreconditionRequired(w, domain.ErrProfileNotReady.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
