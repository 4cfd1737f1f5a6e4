// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/codelens/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/codelens/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/codelens/internal/adapter/driving/web/templates/partials"
	vm "github.com/ericfisherdev/codelens/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/codelens/internal/application"
	"github.com/ericfisherdev/codelens/internal/domain/model"
	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
)

// multipartOverhead is allowed on top of the upload limit for the multipart
// envelope and form fields.
const multipartOverhead = 64 << 10

const (
	credentialMissingMessage = "API key missing. Set GROQ_API_KEY in the environment or a .env file and restart the server."
	noContentMessage         = "Please upload a file or paste some code."
	csrfMessage              = "Your session has expired. Reload the page and try again."
	internalErrorMessage     = "Something went wrong. Please try again."
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	sessionSvc *application.SessionService
	reviewSvc  *application.ReviewService
	modelSvc   *application.ModelService
	maxUpload  int64
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. maxUpload caps
// the size of an uploaded file and of pasted text in bytes.
func NewHandler(
	sessionSvc *application.SessionService,
	reviewSvc *application.ReviewService,
	modelSvc *application.ModelService,
	maxUpload int64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		sessionSvc: sessionSvc,
		reviewSvc:  reviewSvc,
		modelSvc:   modelSvc,
		maxUpload:  maxUpload,
		logger:     logger,
	}
}

// Index renders the full page. Without a credential the input tabs and the
// analyze action are omitted and the missing-key warning is shown instead.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	sess, err := h.loadSession(w, r)
	if err != nil {
		h.logger.Error("failed to load session", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	page := toPageViewModel(sess, h.reviewSvc.Ready(), h.modelSvc.Options(r.Context()), h.maxUpload)
	layout := templates.Layout(page.Title, sess.CSRFToken, pages.Index(page))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render index", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// SelectModel stores the visitor's model choice from the "model" form field.
// Answers 204 on success.
func (h *Handler) SelectModel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, multipartOverhead)

	sess, ok := h.mutatingSession(w, r)
	if !ok {
		return
	}

	if err := h.sessionSvc.SelectModel(r.Context(), sess, r.PostFormValue("model")); err != nil {
		if errors.Is(err, model.ErrUnknownModel) {
			h.renderAlert(w, r, http.StatusBadRequest, vm.AlertError, "Unknown model.")
			return
		}
		h.internalError(w, r, "failed to select model", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadFile acquires code from the multipart "file" field and answers with
// the refreshed input panel. A file that is not UTF-8 text clears the upload
// and the panel carries the decode error.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)

	sess, ok := h.mutatingSession(w, r)
	if !ok {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			h.renderInputPanel(w, r, http.StatusRequestEntityTooLarge, sess, alertOf(vm.AlertError, h.tooLargeMessage()))
			return
		}
		h.renderInputPanel(w, r, http.StatusBadRequest, sess, alertOf(vm.AlertError, "No file received."))
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		h.renderInputPanel(w, r, http.StatusRequestEntityTooLarge, sess, alertOf(vm.AlertError, h.tooLargeMessage()))
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		h.internalError(w, r, "failed to read upload", err)
		return
	}

	if _, err := h.sessionSvc.AcquireFile(r.Context(), sess, header.Filename, raw); err != nil {
		if errors.Is(err, model.ErrNotUTF8) {
			msg := "Could not read " + header.Filename + ": the file is not valid UTF-8 text."
			h.renderInputPanel(w, r, http.StatusUnprocessableEntity, sess, alertOf(vm.AlertError, msg))
			return
		}
		h.internalError(w, r, "failed to store upload", err)
		return
	}

	h.renderInputPanel(w, r, http.StatusOK, sess, nil)
}

// Paste acquires code from the "code" form field. An empty value clears the
// paste slot.
func (h *Handler) Paste(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	// Parsed up front: the CSRF lookup of the form field would otherwise
	// parse it and drop a size error.
	parseErr := r.ParseForm()

	sess, ok := h.mutatingSession(w, r)
	if !ok {
		return
	}

	if parseErr != nil {
		if isTooLarge(parseErr) {
			h.renderInputPanel(w, r, http.StatusRequestEntityTooLarge, sess, alertOf(vm.AlertError, h.tooLargeMessage()))
			return
		}
		h.renderAlert(w, r, http.StatusBadRequest, vm.AlertError, "Malformed request.")
		return
	}

	code := r.PostFormValue("code")
	if int64(len(code)) > h.maxUpload {
		h.renderInputPanel(w, r, http.StatusRequestEntityTooLarge, sess, alertOf(vm.AlertError, h.tooLargeMessage()))
		return
	}

	if err := h.sessionSvc.AcquirePaste(r.Context(), sess, code); err != nil {
		h.internalError(w, r, "failed to store paste", err)
		return
	}

	h.renderInputPanel(w, r, http.StatusOK, sess, nil)
}

// Analyze runs a review of the session's current input. Without content it
// answers with an HTML warning and no remote request is made; otherwise the
// response is an event stream of report updates.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, multipartOverhead)

	sess, ok := h.mutatingSession(w, r)
	if !ok {
		return
	}

	if _, ok := sess.Input(); !ok {
		h.renderAlert(w, r, http.StatusOK, vm.AlertWarning, noContentMessage)
		return
	}

	if err := h.sessionSvc.Touch(r.Context(), sess); err != nil {
		h.logger.Warn("failed to refresh session", "error", err)
	}

	sse := newSSEWriter(w)
	_, err := h.reviewSvc.Analyze(r.Context(), sess, &reportSink{sse: sse})
	if err == nil {
		return
	}
	if r.Context().Err() != nil {
		// Client went away; nobody is left to read an error event.
		return
	}

	msg, renderErr := renderString(r.Context(), partials.Alert(vm.AlertViewModel{
		Level:   vm.AlertError,
		Message: analysisErrorMessage(err),
	}))
	if renderErr != nil {
		h.logger.Error("failed to render analysis error", "error", renderErr)
		return
	}
	if err := sse.Event(eventError, msg); err != nil {
		h.logger.Debug("failed to deliver error event", "error", err)
	}
}

// mutatingSession loads the session for a state-changing request and
// enforces the credential and CSRF preconditions. It writes the response and
// returns false when the request must not proceed.
func (h *Handler) mutatingSession(w http.ResponseWriter, r *http.Request) (*model.Session, bool) {
	if !h.reviewSvc.Ready() {
		h.renderAlert(w, r, http.StatusServiceUnavailable, vm.AlertError, credentialMissingMessage)
		return nil, false
	}

	sess, err := h.loadSession(w, r)
	if err != nil {
		h.internalError(w, r, "failed to load session", err)
		return nil, false
	}

	if !validateCSRF(r, sess) {
		h.renderAlert(w, r, http.StatusForbidden, vm.AlertError, csrfMessage)
		return nil, false
	}

	return sess, true
}

func (h *Handler) renderInputPanel(w http.ResponseWriter, r *http.Request, status int, sess *model.Session, alert *vm.AlertViewModel) {
	h.render(w, r, status, partials.InputPanel(toInputPanelViewModel(sess, alert)))
}

func (h *Handler) renderAlert(w http.ResponseWriter, r *http.Request, status int, level, message string) {
	h.render(w, r, status, partials.Alert(vm.AlertViewModel{Level: level, Message: message}))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render partial", "path", r.URL.Path, "error", err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "path", r.URL.Path, "error", err)
	h.renderAlert(w, r, http.StatusInternalServerError, vm.AlertError, internalErrorMessage)
}

func (h *Handler) tooLargeMessage() string {
	return "Code is larger than the " + sizeLabel(h.maxUpload) + " limit."
}

// analysisErrorMessage is the inline text shown for a failed analysis.
// Remote failures are shown verbatim so the visitor can act on them.
func analysisErrorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrNoContent):
		return noContentMessage
	case errors.Is(err, model.ErrCredentialMissing):
		return credentialMissingMessage
	case errors.Is(err, driven.ErrUnauthorized):
		return "The API key was rejected. Check GROQ_API_KEY and restart the server."
	case errors.Is(err, driven.ErrRateLimited):
		return "The model service is rate limiting requests. Wait a moment and try again."
	default:
		return "An error occurred: " + err.Error()
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func renderString(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
