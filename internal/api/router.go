package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/notifyhub/jobboard/internal/api/handler"
	apimw "github.com/notifyhub/jobboard/internal/api/middleware"
	"github.com/notifyhub/jobboard/internal/auth"
	"github.com/notifyhub/jobboard/internal/domain"
	"github.com/notifyhub/jobboard/internal/metrics"
	"github.com/notifyhub/jobboard/internal/queue"
	"github.com/notifyhub/jobboard/internal/realtime"
	"github.com/notifyhub/jobboard/internal/service"
	"github.com/notifyhub/jobboard/internal/worker"
)

// Deps is everything the HTTP surface needs. Metrics, Limits and DB are
// optional.
type Deps struct {
	Users        *service.UserService
	Jobs         *service.JobService
	Applications *service.ApplicationService
	Alerts       *service.AlertService
	Companies    *service.CompanyService
	SavedJobs    *service.SavedJobService

	Tokens   *auth.TokenManager
	Hub      *realtime.Hub
	Registry *realtime.Registry
	Conns    *realtime.ConnSet
	Queue    *queue.PriorityQueue
	Retries  *worker.RetryWorker

	Limits   apimw.Allower
	DB       handler.Pinger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	ClientURL string
	Logger    *zap.Logger
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	var onRequest func(string, int)
	var onLimited func()
	if d.Metrics != nil {
		onRequest = func(method string, status int) {
			d.Metrics.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
		}
		onLimited = d.Metrics.RateLimited.Inc
	}

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestSize(10 << 20))
	r.Use(apimw.CorrelationID)
	r.Use(apimw.RequestLogger(d.Logger, onRequest))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", apimw.CorrelationHeader},
		ExposedHeaders:   []string{apimw.CorrelationHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if d.Limits != nil {
		r.Use(apimw.RateLimit(d.Limits, onLimited))
	}

	// --- handler instances ---
	uh := handler.NewUserHandler(d.Users, d.Logger)
	jh := handler.NewJobHandler(d.Jobs, d.Logger)
	ah := handler.NewApplicationHandler(d.Applications, d.Logger)
	alh := handler.NewAlertHandler(d.Alerts, d.Logger)
	ch := handler.NewCompanyHandler(d.Companies, d.Logger)
	sh := handler.NewSavedJobHandler(d.SavedJobs, d.Logger)
	mh := handler.NewMetricsHandler(d.Queue, d.Retries, d.Registry, d.Conns)
	hh := handler.NewHealthHandler(d.DB)

	authn := apimw.Authenticate(d.Tokens, d.Users, d.Logger)
	employer := apimw.RequireRole(domain.RoleEmployer, domain.RoleAdmin)
	employerOnly := apimw.RequireRole(domain.RoleEmployer)
	seeker := apimw.RequireRole(domain.RoleJobSeeker)
	admin := apimw.RequireRole(domain.RoleAdmin)

	// --- routes ---
	r.Get("/health", hh.Health)
	r.Get("/socket", d.Hub.ServeWS)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/metrics", mh.GetMetrics)

		// Public reads. Literal segments are registered before path params.
		r.Get("/jobs", jh.Search)
		r.Get("/jobs/stats", jh.Stats)
		r.With(authn, employer).Get("/jobs/mine", jh.ListMine)
		r.With(authn).Get("/jobs/saved", sh.List)
		r.Get("/jobs/{jobId}", jh.Get)

		r.With(authn, employerOnly).Get("/companies/me", ch.Mine)
		r.Get("/companies/by-employer/{employerId}", ch.GetByEmployer)
		r.Get("/companies/{companyId}", ch.Get)
		r.Get("/companies/{companyId}/reviews", ch.Reviews)

		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Post("/users/me", uh.Sync)
			r.Get("/users/me", uh.Me)
			r.With(admin).Get("/users/all", uh.List)
			r.Get("/users/{userId}", uh.Get)
			r.With(admin).Delete("/users/{userId}", uh.Delete)

			r.With(employer).Post("/jobs", jh.Create)
			r.Put("/jobs/{jobId}", jh.Update)
			r.Delete("/jobs/{jobId}", jh.Delete)
			r.With(seeker).Post("/jobs/{jobId}/save", sh.Save)
			r.With(seeker).Delete("/jobs/{jobId}/save", sh.Unsave)

			r.With(employerOnly).Post("/companies", ch.Create)
			r.With(employerOnly).Put("/companies", ch.Update)
			r.Post("/companies/{companyId}/reviews", ch.AddReview)
			r.Put("/companies/{companyId}/reviews/{reviewId}", ch.UpdateReview)
			r.Delete("/companies/{companyId}/reviews/{reviewId}", ch.DeleteReview)

			// Literal segments are registered before {applicationId}.
			r.Route("/applications", func(r chi.Router) {
				r.With(seeker).Get("/", ah.ListMine)
				r.With(employer).Get("/stats", ah.Stats)
				r.With(employer).Get("/job/{jobId}", ah.ListForJob)
				r.With(seeker).Post("/{jobId}/apply", ah.Apply)
				r.Get("/{applicationId}", ah.GetByID)
				r.With(employer).Put("/{applicationId}/status", ah.UpdateStatus)
				r.With(employer).Post("/{applicationId}/note", ah.AddNote)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Post("/", alh.Create)
				r.Get("/", alh.List)
				r.Get("/recommended", alh.Recommended)
				r.Put("/{alertId}", alh.Update)
				r.Delete("/{alertId}", alh.Delete)
			})
		})
	})

	return r
}
