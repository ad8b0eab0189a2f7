package http

import (
	"context"
	"net/http"
	"strings"

	"realty-booking-engine/internal/domain"
	"realty-booking-engine/internal/security"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Actor is the authenticated caller, resolved from JWT claims. Handlers never
// take actor identity or role from request bodies.
type Actor struct {
	ID    int32
	Email string
	Role  domain.Role
}

// Authenticate validates the bearer token and stores the actor on the request
// context.
func Authenticate(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: &domain.Error{Message: "missing bearer token"}})
				return
			}
			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil || claims.Type != security.TokenTypeAccess {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: &domain.Error{Message: "invalid or expired token"}})
				return
			}
			actor := Actor{ID: claims.UserID, Email: claims.Email, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorContextKey, actor)))
		})
	}
}

func actorFrom(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorContextKey).(Actor)
	return actor
}
