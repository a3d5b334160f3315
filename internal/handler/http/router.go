package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/ecommerce-api/internal/ratelimit"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Users      *UserHandler
	Products   *ProductHandler
	Categories *CatalogHandler
	Brands     *CatalogHandler
	Colors     *CatalogHandler
	Reviews    *ReviewHandler
	Orders     *OrderHandler
	Coupons    *CouponHandler
	Health     Pinger
}

// NewRouter wires every API route under /api/v1. limit guards the
// register and login endpoints; pass a no-op middleware to disable it.
func NewRouter(h Handlers, authn *Authenticator, limit func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(ratelimit.CapturePeer)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Route "+r.URL.Path+" not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed on "+r.URL.Path)
	})

	r.Get("/health", healthHandler(h.Health))

	r.Route("/api/v1", func(api chi.Router) {
		authed := api.With(authn.RequireAuth)
		admin := authed.With(authn.RequireAdmin)

		h.Users.RegisterRoutes(api, authed, limit)
		h.Products.RegisterRoutes(api, admin)
		h.Categories.RegisterRoutes(api, admin, "/categories")
		h.Brands.RegisterRoutes(api, admin, "/brands")
		h.Colors.RegisterRoutes(api, admin, "/colors")
		h.Reviews.RegisterRoutes(authed)
		h.Orders.RegisterRoutes(authed, admin)
		h.Coupons.RegisterRoutes(api, admin)
	})

	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				log.Error().Err(err).Msg("Health check failed")
				respondWithError(w, http.StatusServiceUnavailable, "Database unavailable")
				return
			}
		}
		respondWithJSON(w, http.StatusOK, envelope("OK", "", nil))
	}
}
