package handlers

import (
	"net/http"

	"projecthub/config"
	"projecthub/database"
	"projecthub/middleware"
	"projecthub/models"
	"projecthub/services"
	"projecthub/storage"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the router needs to serve the API.
type Deps struct {
	Config      *config.Config
	Log         *zap.Logger
	DB          *gorm.DB
	Credentials *services.Credentials
	Users       *services.Users
	Access      *services.Access
	Projects    *services.Projects
	Tasks       *services.Tasks
	Proposals   *services.Proposals
	Store       storage.Store
	// FilesDir is served under /files/ when set (local upload backend).
	FilesDir string
}

func NewRouter(d Deps) http.Handler {
	upload := &uploader{store: d.Store, maxBytes: d.Config.MaxUploadBytes()}

	authHandler := NewAuthHandler(d.Credentials, d.Users, upload, d.Log)
	projectHandler := NewProjectHandler(d.Projects, d.Log)
	taskHandler := NewTaskHandler(d.Tasks, d.Log)
	proposalHandler := NewProposalHandler(d.Proposals, d.Access, upload, d.Log)

	authLimiter := middleware.NewRateLimiter(d.Config.Server.AuthRatePerMinute, d.Config.Server.AuthRateBurst)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLog(d.Log))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Metrics)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, "Route not found", nil)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	// Public routes
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("API is ready"))
	})
	router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := database.Ping(r.Context(), d.DB); err != nil {
			d.Log.Error("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, "Database unavailable", nil)
			return
		}
		writeJSON(w, http.StatusOK, "OK", nil)
	})
	router.Handle("/metrics", promhttp.Handler())
	if d.FilesDir != "" {
		router.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(d.FilesDir))))
	}

	router.Group(func(r chi.Router) {
		r.Use(authLimiter.Handler)
		r.Post("/api/register", authHandler.Register)
		r.Post("/api/login", authHandler.Login)
	})

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(d.Credentials, d.Users, d.Log))

		r.Get("/api/me", authHandler.Me)
		r.Patch("/api/me", authHandler.UpdateMe)

		r.Post("/api/projects", projectHandler.Create)
		r.Get("/api/projects", projectHandler.List)
		r.Get("/api/projects/{id}", projectHandler.Details)
		r.Patch("/api/project/{id}", projectHandler.Update)
		r.Delete("/api/project/{id}", projectHandler.Delete)
		r.Post("/api/project/join", projectHandler.Join)
		r.Post("/api/project/collaborators", projectHandler.AddCollaborators)

		r.Post("/api/task", taskHandler.Create)
		r.Get("/api/task/{id}", taskHandler.Get)
		r.Patch("/api/task/{id}", taskHandler.Update)
		r.Delete("/api/task/{id}", taskHandler.Delete)
		r.Get("/api/tasks/{project_id}", taskHandler.List)

		r.Post("/api/{project_id}/proposal", proposalHandler.Create)
		r.Get("/api/{project_id}/proposal", proposalHandler.GetForProject)
		r.Get("/api/proposals/mine", proposalHandler.Mine)

		// Admin only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Patch("/api/{project_id}/proposal/approve", proposalHandler.SetStatus)
			r.Get("/api/proposals", proposalHandler.Count)
		})
	})

	return router
}
