package model

import "log/slog"

// Credential is the opaque API token authorizing remote review calls.
// It has no structure; the only property the application cares about is
// whether it is present.
type Credential string

// Present reports whether a non-empty token was configured.
func (c Credential) Present() bool {
	return c != ""
}

// String never reveals the token so a Credential is safe to print.
func (c Credential) String() string {
	if c == "" {
		return "<absent>"
	}
	return "<redacted>"
}

// LogValue implements slog.LogValuer.
func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.String())
}
