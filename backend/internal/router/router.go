package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/filesmanager/backend/internal/setup"
	"github.com/itchan-dev/filesmanager/shared/errors"
	mw "github.com/itchan-dev/filesmanager/shared/middleware"
	"github.com/itchan-dev/filesmanager/shared/middleware/metrics"
	rl "github.com/itchan-dev/filesmanager/shared/middleware/ratelimiter"
	"github.com/itchan-dev/filesmanager/shared/utils"
)

// New creates and configures a chi router with all the routes.
func New(deps *setup.Dependencies) chi.Router {
	cfg := deps.Config.Public
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", mw.TokenHeader},
	}))
	r.Use(mw.SecurityHeaders(cfg.HTTPS))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/status", h.Status)
	r.Get("/stats", h.Stats)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/users", h.Register)
	// login is the only endpoint that checks passwords
	r.With(mw.RateLimit(rl.New(cfg.LoginRPS, 1, time.Hour), mw.GetIP)).Get("/connect", h.Connect)
	r.Get("/disconnect", h.Disconnect)

	r.Group(func(r chi.Router) {
		r.Use(authMw.NeedAuth())
		r.Get("/users/me", h.Me)
		r.Post("/files", h.Upload)
		r.Get("/files", h.Index)
		r.Put("/files/{id}/publish", h.Publish)
		r.Put("/files/{id}/unpublish", h.Unpublish)
	})

	// public records are readable without a session
	r.Group(func(r chi.Router) {
		r.Use(authMw.OptionalAuth())
		r.Get("/files/{id}", h.Show)
		r.Get("/files/{id}/data", h.Data)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorAndStatusCode(w, errors.ErrNotFound)
	})

	return r
}

// NewWorkerMetrics serves the thumbnail worker's prometheus metrics and a liveness probe.
func NewWorkerMetrics() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}
