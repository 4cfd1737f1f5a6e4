package httphandler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/codelens/internal/application"
)

const (
	defaultAnalysesLimit = 20
	maxAnalysesLimit     = 200
)

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	healthSvc *application.HealthService
	modelSvc  *application.ModelService
	reviewSvc *application.ReviewService
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	healthSvc *application.HealthService,
	modelSvc *application.ModelService,
	reviewSvc *application.ReviewService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		healthSvc: healthSvc,
		modelSvc:  modelSvc,
		reviewSvc: reviewSvc,
		logger:    logger,
	}
}

// RegisterAPIRoutes registers the JSON API on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/models", h.ListModels)
	mux.HandleFunc("GET /api/v1/analyses", h.ListAnalyses)
}

// ApplyMiddleware wraps next with recovery and request logging.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, next)
	return loggingMiddleware(logger, wrapped)
}

// Health reports liveness. It answers 503 when the session store is
// unreachable and 200 otherwise, including when no API key is configured.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.healthSvc.Check(r.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:            report.Status,
		CredentialPresent: report.CredentialPresent,
		Database:          report.DatabaseOK,
		ActiveSessions:    report.ActiveSessions,
		Time:              time.Now().UTC().Format(time.RFC3339),
	})
}

// ListModels returns the selectable models with their remote availability.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	opts := h.modelSvc.Options(r.Context())

	resp := make([]ModelResponse, 0, len(opts))
	for _, o := range opts {
		resp = append(resp, toModelResponse(o))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListAnalyses returns the most recent analysis audit records.
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := defaultAnalysesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxAnalysesLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxAnalysesLimit))
			return
		}
		limit = n
	}

	analyses, err := h.reviewSvc.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list analyses", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]AnalysisResponse, 0, len(analyses))
	for _, a := range analyses {
		resp = append(resp, toAnalysisResponse(a))
	}

	writeJSON(w, http.StatusOK, resp)
}
