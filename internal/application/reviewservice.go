// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/codelens/internal/domain/model"
	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
	"github.com/ericfisherdev/codelens/internal/prompt"
)

// ReviewService turns a session's resolved input into a streamed review and
// records the outcome in the audit log.
type ReviewService struct {
	streamer driven.ChatStreamer
	analyses driven.AnalysisStore
	prompt   *prompt.Template
	now      func() time.Time
}

// NewReviewService creates a ReviewService. A nil streamer means no
// credential was configured; every Analyze call then fails with
// model.ErrCredentialMissing.
func NewReviewService(streamer driven.ChatStreamer, analyses driven.AnalysisStore, tmpl *prompt.Template) *ReviewService {
	return &ReviewService{
		streamer: streamer,
		analyses: analyses,
		prompt:   tmpl,
		now:      time.Now,
	}
}

// Ready reports whether reviews can be requested at all.
func (s *ReviewService) Ready() bool {
	return s.streamer != nil
}

// BuildRequest assembles the completion request for code on model m.
func (s *ReviewService) BuildRequest(m model.ModelID, code model.CodeBlob) driven.ChatRequest {
	return driven.ChatRequest{
		Model: m,
		Messages: []driven.ChatMessage{
			{Role: driven.ChatRoleSystem, Content: s.prompt.SystemPrompt()},
			{Role: driven.ChatRoleUser, Content: s.prompt.UserPrompt(code)},
		},
		Temperature: s.prompt.Temperature,
		MaxTokens:   s.prompt.MaxTokens,
	}
}

// Analyze requests a review of the session's current input and renders the
// response into sink as it arrives. No remote request is made when the
// credential is missing or the session has no content.
func (s *ReviewService) Analyze(ctx context.Context, sess *model.Session, sink RenderSink) (model.Report, error) {
	if !s.Ready() {
		return model.Report{}, model.ErrCredentialMissing
	}

	in, ok := sess.Input()
	if !ok {
		return model.Report{}, model.ErrNoContent
	}

	rec := model.Analysis{
		ID:         uuid.NewString(),
		SessionID:  sess.ID,
		Model:      sess.Model,
		Source:     in.Source,
		InputBytes: len(in.Code),
		StartedAt:  s.now(),
	}

	stream, err := s.streamer.StreamChat(ctx, s.BuildRequest(sess.Model, in.Code))
	if err != nil {
		err = fmt.Errorf("request review: %w", err)
		s.record(ctx, rec, model.Report{}, err)
		return model.Report{}, err
	}

	report, err := NewStreamRenderer(sink).Render(stream)
	s.record(ctx, rec, report, err)
	if err != nil {
		return report, err
	}

	if missing := report.MissingSections(s.prompt.SectionTitles()); len(missing) > 0 && !report.Empty() {
		slog.Warn("review is missing sections",
			"analysis_id", rec.ID,
			"model", sess.Model,
			"missing", missing,
		)
	}

	return report, nil
}

// Recent returns the newest audit records.
func (s *ReviewService) Recent(ctx context.Context, limit int) ([]model.Analysis, error) {
	return s.analyses.ListRecent(ctx, limit)
}

// record stores the audit entry. Failures are logged and never reach the
// visitor; the write survives a disconnected client.
func (s *ReviewService) record(ctx context.Context, rec model.Analysis, report model.Report, runErr error) {
	rec.FinishedAt = s.now()
	rec.OutputBytes = len(report.Markdown)
	rec.Fragments = report.Fragments

	switch {
	case runErr != nil:
		rec.Status = model.AnalysisStatusError
		rec.Error = runErr.Error()
	case report.Empty():
		rec.Status = model.AnalysisStatusEmpty
	default:
		rec.Status = model.AnalysisStatusOK
	}

	if err := s.analyses.Record(context.WithoutCancel(ctx), rec); err != nil {
		slog.Error("failed to record analysis", "analysis_id", rec.ID, "error", err)
	}

	attrs := []any{
		"analysis_id", rec.ID,
		"model", rec.Model,
		"source", rec.Source,
		"status", rec.Status,
		"input_bytes", rec.InputBytes,
		"output_bytes", rec.OutputBytes,
		"duration", rec.Duration(),
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("analysis failed", append(attrs, "error", runErr)...)
		return
	}
	slog.Info("analysis finished", attrs...)
}
