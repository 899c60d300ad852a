package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saralbooks/saralbooks/internal/platform/httpx"
	"github.com/saralbooks/saralbooks/internal/shared"
)

// RouteMounter attaches a module's routes to a router group.
type RouteMounter interface {
	MountRoutes(r chi.Router)
}

// Handlers aggregates the module handlers the router serves.
type Handlers struct {
	Sequence RouteMounter
	Ledger   RouteMounter
	Billing  RouteMounter
	Reports  RouteMounter
	Jobs     RouteMounter
}

// NewRouter assembles the HTTP surface. All domain routes are firm-scoped
// and sit behind the shared middleware stack.
func NewRouter(logger *slog.Logger, cfg *Config, h Handlers) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: logger, Config: cfg}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Observability endpoints are operator-facing, not firm-scoped.
	if h.Jobs != nil {
		r.Route("/jobs", h.Jobs.MountRoutes)
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(shared.FirmMiddleware)
		if h.Sequence != nil {
			api.Route("/sequences", h.Sequence.MountRoutes)
		}
		if h.Ledger != nil {
			api.Route("/ledger", h.Ledger.MountRoutes)
		}
		if h.Billing != nil {
			api.Group(h.Billing.MountRoutes)
		}
		if h.Reports != nil {
			api.Group(h.Reports.MountRoutes)
		}
	})

	return r
}
