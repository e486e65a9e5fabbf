package routes

import (
	"net/http"

	"github.com/bhamfamilies/directory/internal/api/handlers"
	"github.com/bhamfamilies/directory/internal/api/middleware"
	"github.com/bhamfamilies/directory/internal/domain/providers"
	"github.com/bhamfamilies/directory/internal/domain/repositories"
	"github.com/bhamfamilies/directory/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	favoriteHandler *handlers.FavoriteHandler
	authHandler     *handlers.AuthHandler
	catalogHandler  *handlers.CatalogHandler

	cacheMiddleware *middleware.CacheMiddleware
	sessionStore    providers.SessionStore
	userRepo        repositories.UserRepository
	cookieName      string
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	favoriteHandler *handlers.FavoriteHandler,
	authHandler *handlers.AuthHandler,
	catalogHandler *handlers.CatalogHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	sessionStore providers.SessionStore,
	userRepo repositories.UserRepository,
	cookieName string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		favoriteHandler: favoriteHandler,
		authHandler:     authHandler,
		catalogHandler:  catalogHandler,

		cacheMiddleware: cacheMiddleware,
		sessionStore:    sessionStore,
		userRepo:        userRepo,
		cookieName:      cookieName,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Catalog endpoints
	r.mux.HandleFunc("GET /api/catalog/{directory}", r.catalogHandler.GetCatalog)

	// Favorites endpoints
	r.mux.HandleFunc("GET /api/favorites", r.favoriteHandler.ListFavorites)
	r.mux.HandleFunc("POST /api/favorites", r.favoriteHandler.AddFavorite)
	r.mux.HandleFunc("DELETE /api/favorites", r.favoriteHandler.RemoveFavorite)

	// Auth endpoints
	r.mux.HandleFunc("GET /api/auth/user", r.authHandler.GetCurrentUser)
	r.mux.HandleFunc("GET /api/login", r.authHandler.Login)
	r.mux.HandleFunc("GET /api/logout", r.authHandler.Logout)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.Logging(handler)
	handler = middleware.Session(r.sessionStore, r.userRepo, r.cookieName)(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.Observability(r.metrics)(handler)
	handler = middleware.Compression(handler)
	handler = middleware.CORS(handler)

	return handler
}
