package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/team-dbx/dbx/internal/dto"
	"github.com/team-dbx/dbx/internal/logging"
	"github.com/team-dbx/dbx/internal/server/models"
)

// maxBodyBytes bounds upload bodies; SVG text travels inline.
const maxBodyBytes = 32 << 20

type UserService interface {
	Login(ctx context.Context, email, idToken string) (bool, error)
	Authenticate(ctx context.Context, idToken string) (*models.User, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	InitialSetting(ctx context.Context) ([]models.Category, error)
}

type ResourceService interface {
	Create(ctx context.Context, categoryID string, author *models.User, req *dto.UploadRequest) (*dto.UploadResponse, error)
	AddVersion(ctx context.Context, categoryID, resourceID string, author *models.User, req *dto.UploadRequest) (*dto.UploadResponse, error)
	List(ctx context.Context, categoryID string) ([]dto.ResourceSummary, error)
	Detail(ctx context.Context, categoryID, resourceID string) (*dto.ResourceDetail, error)
	Versions(ctx context.Context, categoryID, resourceID string) ([]dto.VersionRecord, error)
	Delete(ctx context.Context, categoryID, resourceID string) (bool, error)
}

// API holds the handlers of the Resource API.
type API struct {
	users      UserService
	categories CategoryService
	resources  ResourceService
	log        logging.Logger

	// RateLimit is the number of writes per minute allowed per client IP.
	// Zero disables limiting.
	RateLimit int
	// Registry receives the request metrics and backs /metrics. A fresh
	// registry is used when nil.
	Registry *prometheus.Registry
}

func New(us UserService, cs CategoryService, rs ResourceService, log logging.Logger) *API {
	return &API{users: us, categories: cs, resources: rs, log: log.With("module", "httpapi")}
}

// Handler builds the router.
func (a *API) Handler() http.Handler {
	reg := a.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := newMetrics(reg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(m.instrument)

	r.Get("/health", a.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(a.writeLimit())
		r.Post("/login", a.login)
		r.Get("/dbx/categories/{categoryID}/resources/{resourceID}", a.detail)
	})

	r.Group(func(r chi.Router) {
		r.Use(a.bearerAuth)

		r.Get("/categories", a.listCategories)
		r.Get("/categories/{categoryID}", a.listResources)
		r.Get("/categories/{categoryID}/resources/{resourceID}", a.detail)
		r.Get("/categories/{categoryID}/resources/{resourceID}/versions", a.versions)

		r.Group(func(r chi.Router) {
			r.Use(a.writeLimit())
			r.Post("/initialSetting", a.initialSetting)
			r.Post("/categories/{categoryID}/resource", a.createResource)
			r.Post("/categories/{categoryID}/resources/{resourceID}/version", a.addVersion)
			r.Delete("/categories/{categoryID}/resources/{resourceID}", a.deleteResource)
		})
	})

	return r
}

func (a *API) writeLimit() func(http.Handler) http.Handler {
	if a.RateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(a.RateLimit, time.Minute)
}
