package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/inventory-backend/api/controllers"
	"github.com/angelmondragon/inventory-backend/api/middleware"
	"github.com/angelmondragon/inventory-backend/internal/auth"
	"github.com/angelmondragon/inventory-backend/internal/items"
	"github.com/angelmondragon/inventory-backend/pkg/config"
	"github.com/angelmondragon/inventory-backend/pkg/logger"
	"github.com/angelmondragon/inventory-backend/pkg/metrics"
	"github.com/angelmondragon/inventory-backend/pkg/redis"
)

// Dependencies carries everything the HTTP surface needs.
// A nil Idempotency store disables replay protection on item creation.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	Readiness   map[string]controllers.Pinger
	Idempotency redis.IdempotencyStore

	Items    items.Service
	Auth     auth.Service
	Register auth.RegisterService
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		chimiddleware.StripSlashes,
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Readiness, logg))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.Register, logg))
		r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/token/refresh", controllers.AuthRefresh(deps.Auth, logg))
	})

	r.Route("/api/items", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.With(middleware.Idempotency(deps.Idempotency, cfg.App.IdempotencyTTL, logg)).
			Post("/", controllers.ItemCreate(deps.Items, logg))
		r.Get("/{id}", controllers.ItemGet(deps.Items, logg))
		r.Put("/{id}", controllers.ItemUpdate(deps.Items, logg))
		r.Delete("/{id}", controllers.ItemDelete(deps.Items, logg))
	})

	return r
}
