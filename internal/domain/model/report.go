package model

import (
	"strings"
	"time"
)

// Fragment is one incremental chunk of text delivered by a streaming response.
type Fragment string

// Report is the accumulated markdown critique for one analysis: the
// concatenation of every fragment in arrival order.
type Report struct {
	Markdown  string
	Fragments int
}

// Empty reports whether the stream closed without delivering any text.
func (r Report) Empty() bool {
	return r.Markdown == ""
}

// MissingSections returns the titles that do not appear in any markdown
// heading line of the report. Matching is case-insensitive and ignores the
// heading level and any decoration around the title.
func (r Report) MissingSections(titles []string) []string {
	var headings []string
	for line := range strings.Lines(r.Markdown) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			headings = append(headings, strings.ToLower(line))
		}
	}

	var missing []string
	for _, title := range titles {
		want := strings.ToLower(title)
		found := false
		for _, h := range headings {
			if strings.Contains(h, want) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, title)
		}
	}
	return missing
}

// Analysis is the audit record of one analyze action. It carries sizes and
// outcome only; neither the code nor the report text is kept.
type Analysis struct {
	ID          string
	SessionID   string
	Model       ModelID
	Source      InputSource
	InputBytes  int
	OutputBytes int
	Fragments   int
	Status      AnalysisStatus
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Duration is the wall time between request and stream end.
func (a Analysis) Duration() time.Duration {
	return a.FinishedAt.Sub(a.StartedAt)
}
