package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"userhub/internal/platform/middleware"
	jsonResponse "userhub/internal/transport/http/json"
	"userhub/internal/user/handler"
)

// NewRouter wires all endpoints with the middleware stack. Protected routes
// pass through RequireAuth; admin routes additionally pass through
// RequireAdmin. Middleware short-circuits before any handler runs.
func NewRouter(h *handler.Handler, verifier middleware.Verifier, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/users", func(r chi.Router) {
		h.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(verifier, logger))
			h.RegisterProtected(r)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		h.RegisterAdminLogin(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(verifier, logger))
			r.Use(middleware.RequireAdmin(logger))
			h.RegisterAdmin(r)
		})
	})

	return r
}
