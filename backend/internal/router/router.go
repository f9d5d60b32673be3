package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/anonboard/backend/internal/handler"
	mw "github.com/itchan-dev/anonboard/shared/middleware"
	"github.com/itchan-dev/anonboard/shared/middleware/metrics"
)

// New creates the chi router with all api routes. The {board} segment is
// only used when creating and listing threads.
func New(h *handler.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(mw.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/threads/{board}", func(r chi.Router) {
			r.Post("/", h.CreateThread)
			r.Get("/", h.ListThreads)
			r.Delete("/", h.DeleteThread)
			r.Put("/", h.ReportThread)
		})
		r.Route("/replies/{board}", func(r chi.Router) {
			r.Post("/", h.CreateReply)
			r.Get("/", h.GetReplies)
			r.Delete("/", h.DeleteReply)
			r.Put("/", h.ReportReply)
		})
	})

	return r
}
