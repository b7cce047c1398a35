package handler

import (
	"net/http"
	"time"

	"github.com/controleapp/controle-bfa-go/internal/domain"
	"github.com/controleapp/controle-bfa-go/internal/infra/observability"
	"github.com/controleapp/controle-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Config carries the router's own settings.
type Config struct {
	JWTSecret      string
	AllowedOrigins []string
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract of the Controle frontend.
func NewRouter(trackerSvc *service.Tracker, goalSvc *service.GoalFlow, billingSvc *service.Billing, metrics *observability.Metrics, cfg Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(requestCounterMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(trackerSvc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Operational metrics snapshot
		r.Get("/metrics/ops", opsMetricsHandler(metrics))

		// Billing webhook: processor-to-server, no user token.
		r.Post("/billing/events", billingEventHandler(billingSvc, logger))

		// User-scoped routes, identity enforced against {userId}.
		r.Route("/users/{userId}", func(r chi.Router) {
			r.Use(JWTAuthMiddleware(cfg.JWTSecret, logger))

			// Profile
			r.Get("/profile", getProfileHandler(trackerSvc, logger))
			r.Put("/profile", updateProfileHandler(trackerSvc, logger))

			// Dashboard
			r.Get("/dashboard", getDashboardHandler(trackerSvc, logger))

			// Transactions
			r.Get("/transactions", listTransactionsHandler(trackerSvc, logger))
			r.Post("/transactions", createTransactionHandler(trackerSvc, logger))
			r.Put("/transactions/{transactionId}", updateTransactionHandler(trackerSvc, logger))
			r.Delete("/transactions/{transactionId}", deleteTransactionHandler(trackerSvc, logger))

			// Monthly goal (two-step confirmation)
			r.Get("/goal", goalStatusHandler(goalSvc))
			r.Post("/goal/propose", goalProposeHandler(goalSvc, logger))
			r.Post("/goal/confirm", goalConfirmHandler(goalSvc, logger))
			r.Post("/goal/back", goalBackHandler(goalSvc, logger))
			r.Post("/goal/cancel", goalCancelHandler(goalSvc))

			// Reports
			r.Get("/reports/summary", reportSummaryHandler(trackerSvc, logger))

			// Billing access gate
			r.Get("/access", accessHandler(billingSvc, logger))

			// Account deletion
			r.Delete("/", deleteAccountHandler(billingSvc, logger))
		})
	})

	return r
}

// requestCounterMiddleware feeds the success/error counters behind the
// operational metrics snapshot.
func requestCounterMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if ww.Status() >= 400 {
				metrics.IncrRequest("error")
			} else {
				metrics.IncrRequest("success")
			}
		})
	}
}

// ============================================================
// Probes & metrics
// ============================================================

func healthzHandler(trackerSvc *service.Tracker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "controle-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if trackerSvc != nil {
			start := time.Now()
			_, err := trackerSvc.ListTransactions(ctx, "health-check")
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func opsMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetOpsSnapshot())
	}
}
