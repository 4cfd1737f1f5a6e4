package application

import (
	"fmt"
	"strings"

	"github.com/ericfisherdev/codelens/internal/domain/model"
	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
)

// Cursor is appended to the visible report while the stream is still open.
const Cursor = "▌"

// EmptyReportNotice is the final display when the stream closes without text.
const EmptyReportNotice = "_The model returned no content._"

// RenderState is the renderer lifecycle. The only transition is
// StateStreaming to StateDone, taken when the stream is exhausted.
type RenderState int

const (
	StateStreaming RenderState = iota
	StateDone
)

// RenderSink receives every visible update of the report. While streaming,
// markdown carries the trailing Cursor; the final update (done=true) is the
// exact concatenation of all fragments, or EmptyReportNotice if there were none.
type RenderSink interface {
	Update(markdown string, done bool) error
}

// StreamRenderer accumulates fragments and redisplays the growing buffer
// after each one.
type StreamRenderer struct {
	sink      RenderSink
	buf       strings.Builder
	fragments int
	state     RenderState
}

// NewStreamRenderer creates a renderer writing to sink.
func NewStreamRenderer(sink RenderSink) *StreamRenderer {
	return &StreamRenderer{sink: sink}
}

// Render consumes the stream to completion. On a stream or sink error it
// stops immediately, stays in StateStreaming and returns the text gathered so
// far alongside the error; no final update is sent.
func (r *StreamRenderer) Render(stream driven.FragmentStream) (model.Report, error) {
	if r.state == StateDone {
		return r.report(), driven.ErrStreamConsumed
	}

	for frag, err := range stream {
		if err != nil {
			return r.report(), err
		}
		if frag == "" {
			continue
		}

		r.buf.WriteString(string(frag))
		r.fragments++

		if err := r.sink.Update(r.buf.String()+Cursor, false); err != nil {
			return r.report(), fmt.Errorf("render update: %w", err)
		}
	}

	r.state = StateDone

	final := r.buf.String()
	if final == "" {
		final = EmptyReportNotice
	}
	if err := r.sink.Update(final, true); err != nil {
		return r.report(), fmt.Errorf("render final update: %w", err)
	}

	return r.report(), nil
}

func (r *StreamRenderer) report() model.Report {
	return model.Report{Markdown: r.buf.String(), Fragments: r.fragments}
}
