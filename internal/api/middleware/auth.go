package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/mewatch/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

const tokenPrefix = "Token "

// UserFrom extracts the authenticated user from a request context
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// WithUser attaches a user to a context
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// TokenAuth middleware resolves "Authorization: Token <key>" headers to a user
// and rejects requests without a valid token
func TokenAuth(db *models.Database, logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, tokenPrefix) {
				unauthorized(w, "Authentication credentials were not provided.")
				return
			}

			user, err := db.GetTokenUser(strings.TrimPrefix(header, tokenPrefix))
			if err != nil {
				logger.WithError(err).Debug("Token lookup failed")
				unauthorized(w, "Invalid token.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
