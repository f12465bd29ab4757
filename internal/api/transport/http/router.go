package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skillforge/platform/internal/access"
	apimw "github.com/skillforge/platform/internal/api/middleware"
	catalogApp "github.com/skillforge/platform/internal/catalog/app"
	identityApp "github.com/skillforge/platform/internal/identity/app"
	ledgerApp "github.com/skillforge/platform/internal/ledger/app"
	settingsApp "github.com/skillforge/platform/internal/settings/app"
)

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	AuthService     *identityApp.AuthService
	UserService     *identityApp.UserService
	CatalogService  *catalogApp.Service
	LedgerService   *ledgerApp.Service
	SettingsService *settingsApp.Service
	Evaluator       *access.Evaluator
	Logger          *slog.Logger
}

// NewRouter assembles the full API surface.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()
	validate := validator.New()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(PrometheusMetricsMiddleware)
	r.Use(apimw.Authenticate(deps.AuthService, deps.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	NewAuthHandler(deps.AuthService, validate, deps.Logger).RegisterRoutes(r)
	NewUserHandler(deps.UserService, deps.LedgerService, validate, deps.Logger).RegisterRoutes(r)
	NewCourseHandler(deps.CatalogService, deps.LedgerService, validate, deps.Logger).RegisterRoutes(r)
	NewChapterHandler(deps.CatalogService, validate, deps.Logger).RegisterRoutes(r)
	NewLessonHandler(deps.CatalogService, deps.Evaluator, validate, deps.Logger).RegisterRoutes(r)
	NewCategoryHandler(deps.CatalogService, validate, deps.Logger).RegisterRoutes(r)
	NewLicenseHandler(deps.CatalogService, deps.LedgerService, validate, deps.Logger).RegisterRoutes(r)
	NewEnrollmentHandler(deps.LedgerService, validate, deps.Logger).RegisterRoutes(r)
	NewAccessHandler(deps.Evaluator, deps.Logger).RegisterRoutes(r)
	NewAdminHandler(deps.AuthService, deps.UserService, deps.CatalogService, deps.LedgerService, deps.SettingsService, validate, deps.Logger).RegisterRoutes(r)

	return r
}
