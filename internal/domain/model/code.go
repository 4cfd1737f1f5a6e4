package model

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNotUTF8 is returned when uploaded bytes cannot be decoded as UTF-8 text.
	ErrNotUTF8 = errors.New("file content is not valid UTF-8 text")

	// ErrNoContent is returned when an analysis is requested with neither an
	// uploaded file nor pasted code available.
	ErrNoContent = errors.New("no code provided")

	// ErrCredentialMissing is returned by operations that need the API token
	// when none was configured at startup.
	ErrCredentialMissing = errors.New("api key missing")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CodeBlob is the source text submitted for one review. It exists only for the
// duration of a session.
type CodeBlob string

// DecodeUTF8 converts raw upload bytes into a CodeBlob. A leading byte order
// mark is dropped. Any invalid UTF-8 sequence rejects the whole upload.
func DecodeUTF8(raw []byte) (CodeBlob, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return "", ErrNotUTF8
	}
	return CodeBlob(raw), nil
}

// Empty reports whether the blob carries no text at all.
func (c CodeBlob) Empty() bool {
	return c == ""
}

// Lines returns the number of lines, counting a final unterminated line.
func (c CodeBlob) Lines() int {
	if c == "" {
		return 0
	}
	n := strings.Count(string(c), "\n")
	if !strings.HasSuffix(string(c), "\n") {
		n++
	}
	return n
}
