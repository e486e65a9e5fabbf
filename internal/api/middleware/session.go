package middleware

import (
	"context"
	"net/http"

	"github.com/bhamfamilies/directory/internal/domain/entities"
	"github.com/bhamfamilies/directory/internal/domain/providers"
	"github.com/bhamfamilies/directory/internal/domain/repositories"
)

type contextKey string

const userContextKey contextKey = "session_user"

// UserFromContext returns the authenticated user attached by the session
// middleware, if any.
func UserFromContext(ctx context.Context) (*entities.User, bool) {
	user, ok := ctx.Value(userContextKey).(*entities.User)
	return user, ok
}

// WithUser attaches a user to the context. Exposed for handler tests.
func WithUser(ctx context.Context, user *entities.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// Session resolves the session cookie into a user and attaches it to the
// request context. Requests without a valid session pass through untouched;
// each handler decides whether anonymous access is acceptable.
func Session(store providers.SessionStore, users repositories.UserRepository, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := store.Lookup(r.Context(), cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
