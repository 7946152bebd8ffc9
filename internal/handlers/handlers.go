package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"craftfolio.dev/internal/config"
	"craftfolio.dev/internal/middleware"
	"craftfolio.dev/internal/services"
)

// maxJSONBody bounds request bodies decoded as JSON
const maxJSONBody = 1 << 20

// spaPaths are front-end routes answered with the single-page app shell
var spaPaths = []string{"/", "/about", "/projects", "/contact", "/login", "/admin"}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles everything the routes depend on
type Services struct {
	Projects *services.ProjectService
	About    *services.AboutService
	Contact  *services.ContactService
	Uploads  *services.UploadService
	Auth     *services.AuthService
	Tokens   middleware.TokenParser
	Store    Pinger
	// Limiter throttles the public write endpoints; nil disables throttling
	Limiter *middleware.IPRateLimiter
}

// SetupRoutes configures all routes and returns the router
func SetupRoutes(cfg *config.Config, svc Services) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	if cfg.Server.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Initialize handlers
	authHandler := NewAuthHandler(svc.Auth)
	projectHandler := NewProjectHandler(svc.Projects)
	aboutHandler := NewAboutHandler(svc.About)
	contactHandler := NewContactHandler(svc.Contact)
	uploadHandler := NewUploadHandler(svc.Uploads)
	requireAuth := middleware.RequireAuth(svc.Tokens)

	throttled := func(h http.HandlerFunc) http.Handler {
		if svc.Limiter == nil {
			return h
		}
		return svc.Limiter.Handler(h)
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Get("/about", aboutHandler.GetAbout)
		r.Method(http.MethodPost, "/contact", throttled(contactHandler.SendMessage))

		// Project endpoints
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", projectHandler.ListProjects)
			r.Get("/{id}", projectHandler.GetProject)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/admin", projectHandler.ListAllProjects)
				r.Post("/", projectHandler.CreateProject)
				r.Put("/{id}", projectHandler.UpdateProject)
				r.Delete("/{id}", projectHandler.DeleteProject)
			})
		})

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			if svc.Store != nil {
				if err := svc.Store.Ping(r.Context()); err != nil {
					slog.ErrorContext(r.Context(), "health check failed", "error", err)
					respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
					return
				}
			}
			respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	// Uploaded images
	r.Method(http.MethodPost, "/upload", throttled(uploadHandler.Upload))
	uploads := http.FileServer(fileOnlyFS{http.Dir(svc.Uploads.Dir())})
	r.Handle("/uploads/*", http.StripPrefix("/uploads", uploads))

	// Static files
	fileServer := http.FileServer(http.Dir(cfg.Server.StaticDir))
	r.Handle("/static/*", http.StripPrefix("/static", fileServer))

	// Serve index.html for the front-end routes
	index := filepath.Join(cfg.Server.StaticDir, "index.html")
	for _, path := range spaPaths {
		r.Get(path, func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, index)
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a size-limited JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return json.NewDecoder(r.Body).Decode(dst)
}

// respondServiceError maps a service error to its HTTP status.
// Unexpected errors are logged and answered with fallback.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid username or password.")
	case errors.Is(err, services.ErrProjectNotFound):
		respondError(w, http.StatusNotFound, "Project not found")
	default:
		slog.ErrorContext(r.Context(), fallback,
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
