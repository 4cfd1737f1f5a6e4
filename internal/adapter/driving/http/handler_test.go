package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/codelens/internal/adapter/driving/http"
	"github.com/ericfisherdev/codelens/internal/application"
	"github.com/ericfisherdev/codelens/internal/domain/model"
	"github.com/ericfisherdev/codelens/internal/prompt"
)

// --- Mock implementations ---

type mockSessionStore struct {
	count    int
	countErr error
}

func (m *mockSessionStore) Get(_ context.Context, _ string) (*model.Session, error) { return nil, nil }
func (m *mockSessionStore) Save(_ context.Context, _ model.Session) error           { return nil }
func (m *mockSessionStore) Delete(_ context.Context, _ string) error                { return nil }
func (m *mockSessionStore) DeleteIdleSince(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}
func (m *mockSessionStore) DeleteAll(_ context.Context) (int64, error) { return 0, nil }
func (m *mockSessionStore) Count(_ context.Context) (int, error) {
	return m.count, m.countErr
}

type mockAnalysisStore struct {
	analyses  []model.Analysis
	err       error
	lastLimit int
}

func (m *mockAnalysisStore) Record(_ context.Context, _ model.Analysis) error { return nil }
func (m *mockAnalysisStore) ListRecent(_ context.Context, limit int) ([]model.Analysis, error) {
	m.lastLimit = limit
	return m.analyses, m.err
}

type mockCatalog struct {
	ids []string
	err error
}

func (m *mockCatalog) ListModels(_ context.Context) ([]string, error) { return m.ids, m.err }

// --- Helpers ---

type fixture struct {
	sessions *mockSessionStore
	analyses *mockAnalysisStore
	catalog  *mockCatalog
	handler  http.Handler
}

func setupHandler(t *testing.T, credential bool) *fixture {
	t.Helper()

	tmpl, err := prompt.Default()
	require.NoError(t, err)

	f := &fixture{
		sessions: &mockSessionStore{count: 2},
		analyses: &mockAnalysisStore{},
		catalog:  &mockCatalog{ids: []string{string(model.ModelLlama33Versatile)}},
	}

	h := httphandler.NewHandler(
		application.NewHealthService(f.sessions, credential),
		application.NewModelService(f.catalog, model.DefaultModel),
		application.NewReviewService(nil, f.analyses, tmpl),
		slog.Default(),
	)

	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, h)
	mux.HandleFunc("GET /panic", func(http.ResponseWriter, *http.Request) { panic("boom") })
	f.handler = httphandler.ApplyMiddleware(mux, slog.Default())
	return f
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHealth(t *testing.T) {
	f := setupHandler(t, true)

	rec := doGet(t, f.handler, "/api/v1/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var resp httphandler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.CredentialPresent)
	assert.True(t, resp.Database)
	assert.Equal(t, 2, resp.ActiveSessions)
	assert.NotEmpty(t, resp.Time)
}

func TestHealth_DegradedWithoutCredential(t *testing.T) {
	f := setupHandler(t, false)

	rec := doGet(t, f.handler, "/api/v1/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httphandler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.False(t, resp.CredentialPresent)
}

func TestHealth_StoreDown(t *testing.T) {
	f := setupHandler(t, true)
	f.sessions.countErr = errors.New("disk I/O error")

	rec := doGet(t, f.handler, "/api/v1/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListModels(t *testing.T) {
	f := setupHandler(t, true)

	rec := doGet(t, f.handler, "/api/v1/models")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []httphandler.ModelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 3)
	assert.Equal(t, "llama-3.3-70b-versatile", resp[0].ID)
	assert.True(t, resp[0].Default)
	assert.Equal(t, "available", resp[0].Availability)
	assert.Equal(t, "unavailable", resp[1].Availability)
}

func TestListModels_CatalogDown(t *testing.T) {
	f := setupHandler(t, true)
	f.catalog.err = errors.New("timeout")

	rec := doGet(t, f.handler, "/api/v1/models")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []httphandler.ModelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	for _, m := range resp {
		assert.Equal(t, "unknown", m.Availability)
	}
}

func TestListAnalyses(t *testing.T) {
	f := setupHandler(t, true)
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.analyses.analyses = []model.Analysis{{
		ID:          "a1",
		SessionID:   "secret-session",
		Model:       model.DefaultModel,
		Source:      model.InputSourcePaste,
		InputBytes:  20,
		OutputBytes: 900,
		Fragments:   42,
		Status:      model.AnalysisStatusOK,
		StartedAt:   started,
		FinishedAt:  started.Add(1500 * time.Millisecond),
	}}

	rec := doGet(t, f.handler, "/api/v1/analyses?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, f.analyses.lastLimit)
	assert.NotContains(t, rec.Body.String(), "secret-session")

	var resp []httphandler.AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "a1", resp[0].ID)
	assert.Equal(t, "paste", resp[0].Source)
	assert.Equal(t, int64(1500), resp[0].DurationMS)
	assert.Equal(t, "2026-03-01T12:00:00Z", resp[0].StartedAt)
}

func TestListAnalyses_DefaultLimitAndEmpty(t *testing.T) {
	f := setupHandler(t, true)

	rec := doGet(t, f.handler, "/api/v1/analyses")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, f.analyses.lastLimit)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListAnalyses_BadLimit(t *testing.T) {
	f := setupHandler(t, true)

	for _, limit := range []string{"0", "-1", "abc", "201"} {
		rec := doGet(t, f.handler, "/api/v1/analyses?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}

func TestListAnalyses_StoreError(t *testing.T) {
	f := setupHandler(t, true)
	f.analyses.err = errors.New("database is locked")

	rec := doGet(t, f.handler, "/api/v1/analyses")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	f := setupHandler(t, true)

	rec := doGet(t, f.handler, "/panic")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestStatusWriterSupportsFlush(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stream", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("x"))
		assert.NoError(t, http.NewResponseController(w).Flush())
	})

	rec := doGet(t, httphandler.ApplyMiddleware(mux, slog.Default()), "/stream")
	assert.True(t, rec.Flushed)
}
