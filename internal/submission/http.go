package submission

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"contact-service/internal/httputil"
	"contact-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const confirmationMessage = "Thank you for reaching out! I will get back to you soon."

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

// RegisterPublicRoutes mounts the visitor-facing intake endpoint.
func (h *Handler) RegisterPublicRoutes(router chi.Router) {
	router.Post("/contact-form", h.SubmitContactForm)
}

// RegisterAdminRoutes mounts the triage endpoints consumed by the admin view.
func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/submissions", h.ListSubmissions)
	router.Patch("/submissions/{id}/status", h.UpdateStatus)
	router.Delete("/submissions/{id}", h.DeleteSubmission)
}

type SubmitRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type SubmitResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SubmissionID string `json:"submissionId"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

func (h *Handler) SubmitContactForm(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.RecordSubmissionRejected(r.Context(), "malformed_body")
		httputil.RespondWithErrorDetails(w, http.StatusBadRequest,
			"Missing required fields", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.metrics.RecordSubmissionRejected(r.Context(), "missing_fields")
		httputil.RespondWithErrorDetails(w, http.StatusBadRequest,
			"Missing required fields", "name, email and message are required")
		return
	}

	h.logger.InfoContext(r.Context(), "contact form submitted", "email", req.Email)

	sub, err := h.service.Submit(r.Context(), req.Name, req.Email, req.Message, clientMeta(r))
	if err != nil {
		h.handleSubmitError(w, r, err)
		return
	}

	h.metrics.RecordSubmissionReceived(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, SubmitResponse{
		Success:      true,
		Message:      confirmationMessage,
		SubmissionID: sub.ID,
	})
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "fetching all submissions")

	subs, err := h.service.ListSubmissions(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list submissions", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Failed to load submissions")
		return
	}
	if subs == nil {
		subs = []Submission{}
	}

	h.metrics.RecordListViewed(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, subs)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || h.validate.Struct(&req) != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	h.logger.InfoContext(r.Context(), "updating submission status", "id", id, "status", req.Status)

	sub, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.handleTriageError(w, r, err)
		return
	}

	h.metrics.RecordStatusUpdated(r.Context(), string(sub.Status))

	httputil.RespondWithJSON(w, http.StatusOK, sub)
}

func (h *Handler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.logger.InfoContext(r.Context(), "deleting submission", "id", id)

	if err := h.service.DeleteSubmission(r.Context(), id); err != nil {
		h.handleTriageError(w, r, err)
		return
	}

	h.metrics.RecordSubmissionDeleted(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		h.metrics.RecordSubmissionRejected(r.Context(), "missing_fields")
		httputil.RespondWithErrorDetails(w, http.StatusBadRequest,
			"Missing required fields", "name, email and message are required")
	case errors.Is(err, ErrInvalidEmail):
		h.metrics.RecordSubmissionRejected(r.Context(), "invalid_email")
		httputil.RespondWithErrorDetails(w, http.StatusBadRequest,
			"Invalid email format", "email must look like local@domain.tld")
	default:
		h.logger.ErrorContext(r.Context(), "failed to save submission", "error", err)
		httputil.RespondWithErrorDetails(w, http.StatusInternalServerError,
			"Failed to save submission", "the submission could not be stored, please try again")
	}
}

func (h *Handler) handleTriageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSubmissionNotFound):
		h.logger.InfoContext(r.Context(), "submission not found")
		httputil.RespondWithError(w, http.StatusNotFound, "Submission not found")
	case errors.Is(err, ErrInvalidStatus):
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid status")
	default:
		h.logger.ErrorContext(r.Context(), "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// clientMeta extracts best-effort request metadata. The service substitutes
// "unknown" for anything left empty here.
func clientMeta(r *http.Request) RequestMeta {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		// First hop is the original client.
		ip = strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip == "" {
		ip = strings.TrimSpace(r.Header.Get("X-Real-IP"))
	}
	if ip == "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}
	}

	return RequestMeta{
		IPAddress: ip,
		UserAgent: r.Header.Get("User-Agent"),
	}
}
