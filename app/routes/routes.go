package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"quill/app/controllers"
	"quill/app/metrics"
	"quill/app/middleware"
	"quill/app/services"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// Options tunes the router.
type Options struct {
	// AuthorPasswordHash is a bcrypt hash guarding mutating routes.
	// Empty leaves them open.
	AuthorPasswordHash string
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(postService *services.PostService, opts Options) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Metrics)

	postController := controllers.NewPostController(postService)
	requireAuthor := middleware.RequireAuthor(opts.AuthorPasswordHash)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	// API routes stay on the root router; subrouters answer 404 on a method mismatch.
	// ContentTypeJSON only touches /api paths.
	api := func(path string, h http.Handler, method string) {
		router.Handle(path, middleware.ContentTypeJSON(h)).Methods(method)
	}

	api("/api/stats", http.HandlerFunc(postController.Stats), "GET")
	api("/api/authors/{author}/posts", http.HandlerFunc(postController.ByAuthor), "GET")
	api("/api/posts", http.HandlerFunc(postController.Index), "GET")
	api("/api/posts/{id}", http.HandlerFunc(postController.Show), "GET")

	// Write endpoints
	api("/api/posts", requireAuthor(http.HandlerFunc(postController.Create)), "POST")
	api("/api/posts/{id}", requireAuthor(http.HandlerFunc(postController.Edit)), "PUT")
	api("/api/posts/{id}", requireAuthor(http.HandlerFunc(postController.Delete)), "DELETE")

	// Likes are open to readers
	api("/api/posts/{id}/like", http.HandlerFunc(postController.Like), "POST")
	api("/api/posts/{id}/like", http.HandlerFunc(postController.Unlike), "DELETE")

	return router
}

// WithCORS wraps the router in a CORS handler.
func WithCORS(router http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler(router)
}

// NewHandler builds the complete HTTP handler: routes plus CORS.
func NewHandler(postService *services.PostService, opts Options) http.Handler {
	return WithCORS(SetupRoutes(postService, opts), opts.AllowedOrigins)
}

// StartServer serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func StartServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Server exited")
	return nil
}
