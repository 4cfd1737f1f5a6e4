package model

import "time"

// InputSlot holds the latest value written through one acquisition path.
// Seq is the session-wide write sequence at the time the slot was set; it
// orders writes across the file and paste slots.
type InputSlot struct {
	Text     CodeBlob
	FileName string // Only set for uploads.
	Seq      uint64
}

// Empty reports whether the slot currently yields no content.
func (s InputSlot) Empty() bool {
	return s.Text.Empty()
}

// ResolvedInput is the single code value an analysis runs on.
type ResolvedInput struct {
	Code     CodeBlob
	Source   InputSource
	FileName string
}

// ResolveInput picks the code to analyze from the two acquisition slots.
// The non-empty slot written last wins; contents are never merged. When both
// carry the same sequence the pasted text wins. ok is false when neither slot
// has content.
func ResolveInput(file, paste InputSlot) (in ResolvedInput, ok bool) {
	switch {
	case file.Empty() && paste.Empty():
		return ResolvedInput{}, false
	case paste.Empty():
		return ResolvedInput{Code: file.Text, Source: InputSourceFile, FileName: file.FileName}, true
	case file.Empty(), paste.Seq >= file.Seq:
		return ResolvedInput{Code: paste.Text, Source: InputSourcePaste}, true
	default:
		return ResolvedInput{Code: file.Text, Source: InputSourceFile, FileName: file.FileName}, true
	}
}

// Session is the explicit per-visitor context every operation receives. It
// replaces page-global state: the chosen model, both input slots and the
// CSRF token bound to the visitor's cookie.
type Session struct {
	ID        string
	Model     ModelID
	File      InputSlot
	Paste     InputSlot
	Seq       uint64
	CSRFToken string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a session with the given identity and preselected model.
func NewSession(id, csrfToken string, m ModelID, now time.Time) *Session {
	return &Session{
		ID:        id,
		Model:     m,
		CSRFToken: csrfToken,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetFile records decoded upload text. An empty text clears the slot, which
// is how a failed decode is recorded.
func (s *Session) SetFile(name string, text CodeBlob) {
	s.Seq++
	s.File = InputSlot{Text: text, FileName: name, Seq: s.Seq}
}

// SetPaste records pasted text. The empty string clears the slot.
func (s *Session) SetPaste(text CodeBlob) {
	s.Seq++
	s.Paste = InputSlot{Text: text, Seq: s.Seq}
}

// Input returns the code an analysis started now would use.
func (s *Session) Input() (ResolvedInput, bool) {
	return ResolveInput(s.File, s.Paste)
}

// IdleSince reports whether the session has not been touched since cutoff.
func (s *Session) IdleSince(cutoff time.Time) bool {
	return s.UpdatedAt.Before(cutoff)
}
