package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lunaetstella/smartstock-backend/api/controllers"
	"github.com/lunaetstella/smartstock-backend/api/middleware"
	"github.com/lunaetstella/smartstock-backend/internal/auth"
	"github.com/lunaetstella/smartstock-backend/internal/products"
	"github.com/lunaetstella/smartstock-backend/internal/reports"
	"github.com/lunaetstella/smartstock-backend/internal/transactions"
	"github.com/lunaetstella/smartstock-backend/pkg/config"
	"github.com/lunaetstella/smartstock-backend/pkg/db"
	"github.com/lunaetstella/smartstock-backend/pkg/db/models"
	"github.com/lunaetstella/smartstock-backend/pkg/logger"
	"github.com/lunaetstella/smartstock-backend/pkg/metrics"
	"github.com/lunaetstella/smartstock-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	productService products.Service,
	transactionService transactions.Service,
	reportService reports.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(),
	)

	var limitStore middleware.RateLimiterStore
	if redisClient != nil {
		limitStore = redisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, logg)
	requireAdmin := middleware.RequireRole(models.RoleAdmin.String(), logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, limitStore, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, limitStore, logg)).Post("/login", controllers.AuthLogin(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", controllers.AuthLogout(authService, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/pending", controllers.AuthPendingUsers(authService, logg))
				r.Put("/approve/{id}", controllers.AuthApprove(authService, logg))
				r.Delete("/reject/{id}", controllers.AuthReject(authService, logg))
				r.Get("/logs", controllers.AuthLoginLogs(authService, logg))
			})
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", controllers.ProductsList(productService, logg))
		r.Get("/{id}", controllers.ProductsGet(productService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/", controllers.ProductsCreate(productService, logg))
			r.Put("/{id}", controllers.ProductsUpdate(productService, logg))
			r.Delete("/{id}", controllers.ProductsDelete(productService, logg))
		})
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", controllers.TransactionsList(transactionService, logg))
		r.Post("/", controllers.TransactionsCreate(transactionService, logg))
	})

	r.Route("/reports", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/stats", controllers.ReportsStats(reportService, logg))
		r.With(requireAdmin).Get("/export/csv", controllers.ReportsExportCSV(reportService, logg))
	})

	return r
}
