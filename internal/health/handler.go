package health

import (
	"context"
	"log/slog"
	"net/http"

	"contact-service/internal/httputil"

	"github.com/go-chi/chi/v5"
)

// Prober confirms that the backing store is reachable.
type Prober interface {
	ProbeStore(ctx context.Context) error
}

type Handler struct {
	prober Prober
	logger *slog.Logger
}

func NewHandler(prober Prober, logger *slog.Logger) *Handler {
	return &Handler{
		prober: prober,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready runs the store connectivity probe. The probe is never used for
// business logic, only here.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.prober.ProbeStore(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "store probe failed", "error", err)
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}
