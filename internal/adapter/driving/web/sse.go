package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/codelens/internal/application"
)

// Server-sent event names used on the analyze stream.
const (
	eventFragment = "fragment"
	eventDone     = "done"
	eventError    = "error"
)

// sseWriter writes server-sent events and flushes each one immediately.
type sseWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// newSSEWriter sends the event stream headers. The server write timeout is
// lifted for this response since a review can take longer than any page
// request.
func newSSEWriter(w http.ResponseWriter) *sseWriter {
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	return &sseWriter{w: w, rc: rc}
}

// Event writes one event. Multi-line data is split across data: lines.
func (s *sseWriter) Event(name, data string) error {
	var b strings.Builder
	b.Grow(len(data) + len(name) + 16)

	fmt.Fprintf(&b, "event: %s\n", name)
	for _, line := range strings.Split(data, "\n") {
		b.WriteString("data: ")
		b.WriteString(strings.TrimSuffix(line, "\r"))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if _, err := s.w.Write([]byte(b.String())); err != nil {
		return err
	}
	return s.rc.Flush()
}

// reportSink adapts the renderer's updates to fragment and done events
// carrying sanitized HTML of the whole buffer so far.
type reportSink struct {
	sse *sseWriter
}

var _ application.RenderSink = (*reportSink)(nil)

func (s *reportSink) Update(markdown string, done bool) error {
	name := eventFragment
	if done {
		name = eventDone
	}
	return s.sse.Event(name, strings.TrimRight(RenderMarkdown(markdown), "\n"))
}
