package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/codelens/internal/domain/model"
)

func newTestSession() *model.Session {
	return model.NewSession("sess-1", "csrf", model.DefaultModel, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
}

func TestSession_NoInput(t *testing.T) {
	s := newTestSession()

	_, ok := s.Input()
	assert.False(t, ok)
}

func TestSession_PasteAfterFileWins(t *testing.T) {
	s := newTestSession()
	s.SetFile("main.py", "print('file')")
	s.SetPaste("print('paste')")

	in, ok := s.Input()
	require.True(t, ok)
	assert.Equal(t, model.CodeBlob("print('paste')"), in.Code)
	assert.Equal(t, model.InputSourcePaste, in.Source)
}

func TestSession_FileAfterPasteWins(t *testing.T) {
	s := newTestSession()
	s.SetPaste("print('paste')")
	s.SetFile("main.py", "print('file')")

	in, ok := s.Input()
	require.True(t, ok)
	assert.Equal(t, model.CodeBlob("print('file')"), in.Code)
	assert.Equal(t, model.InputSourceFile, in.Source)
	assert.Equal(t, "main.py", in.FileName)
}

func TestSession_NeverConcatenates(t *testing.T) {
	s := newTestSession()
	s.SetFile("a.js", "A")
	s.SetPaste("B")
	s.SetFile("c.js", "C")

	in, ok := s.Input()
	require.True(t, ok)
	assert.Equal(t, model.CodeBlob("C"), in.Code)
}

func TestSession_EmptyPasteFallsBackToFile(t *testing.T) {
	s := newTestSession()
	s.SetFile("main.py", "print('file')")
	s.SetPaste("print('paste')")
	s.SetPaste("")

	in, ok := s.Input()
	require.True(t, ok)
	assert.Equal(t, model.InputSourceFile, in.Source)
}

func TestSession_ClearedFileYieldsNoContent(t *testing.T) {
	s := newTestSession()
	s.SetFile("main.py", "print('file')")
	s.SetFile("broken.bin", "")

	_, ok := s.Input()
	assert.False(t, ok)
}

func TestSession_SeqIncrementsPerWrite(t *testing.T) {
	s := newTestSession()
	s.SetFile("a", "x")
	s.SetPaste("y")

	assert.Equal(t, uint64(2), s.Seq)
	assert.Equal(t, uint64(1), s.File.Seq)
	assert.Equal(t, uint64(2), s.Paste.Seq)
}

func TestResolveInput_TieGoesToPaste(t *testing.T) {
	in, ok := model.ResolveInput(
		model.InputSlot{Text: "file", Seq: 3},
		model.InputSlot{Text: "paste", Seq: 3},
	)
	require.True(t, ok)
	assert.Equal(t, model.CodeBlob("paste"), in.Code)
}

func TestSession_IdleSince(t *testing.T) {
	s := newTestSession()

	assert.True(t, s.IdleSince(s.UpdatedAt.Add(time.Minute)))
	assert.False(t, s.IdleSince(s.UpdatedAt.Add(-time.Minute)))
}
