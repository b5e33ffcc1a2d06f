package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/fuelctl/internal/http/auth"
	"github.com/MrJamesThe3rd/fuelctl/internal/http/dashboard"
	"github.com/MrJamesThe3rd/fuelctl/internal/http/entry"
	"github.com/MrJamesThe3rd/fuelctl/internal/http/export"
	"github.com/MrJamesThe3rd/fuelctl/internal/http/importcsv"
	"github.com/MrJamesThe3rd/fuelctl/internal/http/matching"
	"github.com/MrJamesThe3rd/fuelctl/internal/telemetry"
)

type Options struct {
	// AllowedOrigins feeds the CORS middleware.
	AllowedOrigins []string

	// Verifier guards /api/v1 when set.
	Verifier auth.Verifier

	Metrics *telemetry.Metrics
}

func New(
	entriesV1 *entry.Handler,
	dashboardV1 *dashboard.Handler,
	importV1 *importcsv.Handler,
	matchingV1 *matching.Handler,
	exportV1 *export.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		router.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Verifier != nil {
			r.Use(auth.Bearer(opts.Verifier))
		}

		r.Route("/entries", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			entriesV1.Routes(r)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			dashboardV1.Routes(r)
		})

		r.Route("/import", importV1.Routes)

		r.Route("/matching", func(r chi.Router) {
			matchingV1.Routes(r)
		})

		r.Route("/export", exportV1.Routes)
	})

	return router
}
