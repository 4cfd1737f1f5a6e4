// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// Alert levels.
const (
	AlertInfo    = "info"
	AlertWarning = "warning"
	AlertError   = "error"
)

// PageViewModel holds everything the single page renders.
type PageViewModel struct {
	Title    string
	Subtitle string

	CredentialPresent bool
	CredentialAlert   AlertViewModel

	Models []ModelOptionViewModel

	AcceptExtensions string // accept= hint on the file input
	MaxUploadLabel   string
	PasteText        string // prefill for the paste textarea

	Input InputPanelViewModel
}

// ModelOptionViewModel is one entry of the model selector.
type ModelOptionViewModel struct {
	ID                string
	Label             string
	Selected          bool
	Availability      string // unknown, available, unavailable
	AvailabilityLabel string
}

// InputPanelViewModel describes the code the next analysis would run on.
type InputPanelViewModel struct {
	Alert *AlertViewModel

	HasContent  bool
	Source      string // "file" or "paste"
	SourceLabel string
	Summary     string // e.g. "12 lines, 340 B"
	PreviewHTML string // escaped, safe to emit raw
}

// AlertViewModel is an inline notice.
type AlertViewModel struct {
	Level   string
	Message string
}
