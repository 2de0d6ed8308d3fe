package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"projecthub/models"
	"projecthub/services"

	"go.uber.org/zap"
)

type contextKey string

const UserContextKey contextKey = "user"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	VerifyToken(token string) (uint, error)
}

// UserLoader fetches the account behind a verified token.
type UserLoader interface {
	Get(ctx context.Context, userID uint) (*models.User, error)
}

// Auth rejects requests without a valid bearer token and stores the caller in the
// request context.
func Auth(verifier TokenVerifier, users UserLoader, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				writeError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			userID, err := verifier.VerifyToken(tokenString)
			if err != nil {
				if errors.Is(err, services.ErrMissingSecret) {
					log.Error("token secret missing, rejecting request")
				}
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			user, err := users.Get(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, services.ErrNotFound) {
					log.Error("load authenticated user", zap.Uint("user_id", userID), zap.Error(err))
				}
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole lets the request through only for users holding one of roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, http.StatusForbidden, services.ErrForbidden.Error())
		})
	}
}

func UserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": message,
		"data":    nil,
	})
}
