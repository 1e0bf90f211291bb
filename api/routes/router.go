package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/novaderm/clinic-backend/api/controllers"
	"github.com/novaderm/clinic-backend/api/middleware"
	"github.com/novaderm/clinic-backend/internal/auth"
	checkoutsvc "github.com/novaderm/clinic-backend/internal/checkout"
	"github.com/novaderm/clinic-backend/internal/lookups"
	"github.com/novaderm/clinic-backend/internal/prescriptions"
	"github.com/novaderm/clinic-backend/internal/products"
	"github.com/novaderm/clinic-backend/internal/users"
	"github.com/novaderm/clinic-backend/pkg/auth/session"
	"github.com/novaderm/clinic-backend/pkg/config"
	"github.com/novaderm/clinic-backend/pkg/db"
	"github.com/novaderm/clinic-backend/pkg/enums"
	"github.com/novaderm/clinic-backend/pkg/logger"
	"github.com/novaderm/clinic-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	Sessions session.AccessSessionChecker
	Registry *prometheus.Registry

	Auth          auth.Service
	Checkout      checkoutsvc.Service
	Prescriptions prescriptions.Service
	Products      products.Service
	Lookups       lookups.Service
	Users         users.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/pending", controllers.CheckoutPending(deps.Checkout, logg))
			r.Post("/", controllers.CheckoutSubmit(deps.Checkout, logg))
			r.Post("/update-status", controllers.CheckoutUpdateStatus(deps.Checkout, logg))
		})

		r.Route("/prescriptions", func(r chi.Router) {
			r.Get("/", controllers.PrescriptionList(deps.Prescriptions, logg))
			r.Post("/", controllers.PrescriptionCreate(deps.Prescriptions, logg))
			r.Get("/{prescriptionId}", controllers.PrescriptionGet(deps.Prescriptions, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.Products, logg))
			r.Post("/", controllers.ProductCreate(deps.Products, logg))
			r.Get("/{productId}", controllers.ProductGet(deps.Products, logg))
			r.Put("/{productId}", controllers.ProductUpdate(deps.Products, logg))
			r.Delete("/{productId}", controllers.ProductDeactivate(deps.Products, logg))
		})

		r.Route("/lookups/{lookupType}", func(r chi.Router) {
			r.Get("/", controllers.LookupList(deps.Lookups, logg))
			r.Post("/", controllers.LookupCreate(deps.Lookups, logg))
			r.Delete("/{entryId}", controllers.LookupDelete(deps.Lookups, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
			r.Get("/", controllers.UserList(deps.Users, logg))
			r.Post("/", controllers.UserCreate(deps.Users, logg))
			r.Get("/{userId}", controllers.UserGet(deps.Users, logg))
			r.Put("/{userId}", controllers.UserUpdate(deps.Users, logg))
			r.Delete("/{userId}", controllers.UserDeactivate(deps.Users, logg))
		})
	})

	return r
}
