package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/codelens/internal/application"
	"github.com/ericfisherdev/codelens/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status            string `json:"status"`
	CredentialPresent bool   `json:"credential_present"`
	Database          bool   `json:"database"`
	ActiveSessions    int    `json:"active_sessions"`
	Time              string `json:"time"`
}

// ModelResponse is one selectable model.
type ModelResponse struct {
	ID           string `json:"id"`
	Default      bool   `json:"default"`
	Availability string `json:"availability"`
}

// AnalysisResponse is the JSON representation of one audit record. It never
// carries code or report text.
type AnalysisResponse struct {
	ID          string `json:"id"`
	Model       string `json:"model"`
	Source      string `json:"source"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	InputBytes  int    `json:"input_bytes"`
	OutputBytes int    `json:"output_bytes"`
	Fragments   int    `json:"fragments"`
	DurationMS  int64  `json:"duration_ms"`
	StartedAt   string `json:"started_at"`
}

func toModelResponse(o application.ModelOption) ModelResponse {
	return ModelResponse{
		ID:           string(o.ID),
		Default:      o.Default,
		Availability: string(o.Availability),
	}
}

// toAnalysisResponse omits the session ID so the endpoint cannot be used to
// correlate visitors.
func toAnalysisResponse(a model.Analysis) AnalysisResponse {
	return AnalysisResponse{
		ID:          a.ID,
		Model:       string(a.Model),
		Source:      string(a.Source),
		Status:      string(a.Status),
		Error:       a.Error,
		InputBytes:  a.InputBytes,
		OutputBytes: a.OutputBytes,
		Fragments:   a.Fragments,
		DurationMS:  a.Duration().Milliseconds(),
		StartedAt:   a.StartedAt.UTC().Format(time.RFC3339),
	}
}
