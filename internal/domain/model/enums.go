package model

import (
	"errors"
	"fmt"
)

// ModelID identifies one of the hosted chat models a review can be run on.
type ModelID string

const (
	ModelLlama33Versatile ModelID = "llama-3.3-70b-versatile"
	ModelLlama31Versatile ModelID = "llama-3.1-70b-versatile"
	ModelLlama31Instant   ModelID = "llama-3.1-8b-instant"
)

// DefaultModel is preselected for every new session.
const DefaultModel = ModelLlama33Versatile

// ErrUnknownModel is returned when a model identifier is outside the fixed set.
var ErrUnknownModel = errors.New("unknown model")

// Models returns the closed set of selectable models in display order.
func Models() []ModelID {
	return []ModelID{ModelLlama33Versatile, ModelLlama31Versatile, ModelLlama31Instant}
}

// Valid reports whether m is one of the selectable models.
func (m ModelID) Valid() bool {
	switch m {
	case ModelLlama33Versatile, ModelLlama31Versatile, ModelLlama31Instant:
		return true
	}
	return false
}

// ParseModelID validates s against the fixed model set.
func ParseModelID(s string) (ModelID, error) {
	m := ModelID(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownModel, s)
	}
	return m, nil
}

// InputSource names the acquisition path a piece of code came through.
type InputSource string

const (
	InputSourceFile  InputSource = "file"
	InputSourcePaste InputSource = "paste"
)

// AnalysisStatus is the terminal outcome of one analyze action.
type AnalysisStatus string

const (
	AnalysisStatusOK    AnalysisStatus = "ok"
	AnalysisStatusEmpty AnalysisStatus = "empty" // stream closed without any text
	AnalysisStatusError AnalysisStatus = "error"
)
