package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/hackgods/spa-booking/internal/auth"
)

type RouterConfig struct {
	Service     AppointmentService
	Catalog     CatalogReader
	Verifier    *auth.Verifier
	Health      *HealthHandler
	RateLimiter *IPRateLimiter // nil disables rate limiting
	Logger      *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoverMiddleware(cfg.Logger))

	r.Get("/health/live", cfg.Health.Liveness)
	r.Get("/health/ready", cfg.Health.Readiness)

	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(RateLimitMiddleware(cfg.RateLimiter, cfg.Logger))
		}

		r.Get("/services", listServicesHandler(cfg.Catalog, cfg.Logger))
		r.Get("/masseurs", listMasseursHandler(cfg.Catalog, cfg.Logger))
		r.Get("/slots", slotsHandler(cfg.Service, cfg.Logger))

		r.Route("/appointments", func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.Verifier))

			r.Post("/", createAppointmentHandler(cfg.Service, cfg.Logger))
			r.Get("/", listAppointmentsHandler(cfg.Service, cfg.Logger))
			r.Get("/{id}", getAppointmentHandler(cfg.Service, cfg.Logger))
			r.Patch("/{id}", updateAppointmentHandler(cfg.Service, cfg.Logger))
			r.Post("/{id}/cancel", cancelAppointmentHandler(cfg.Service, cfg.Logger))
		})
	})

	return otelhttp.NewHandler(r, "spa-booking-api",
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
	)
}
