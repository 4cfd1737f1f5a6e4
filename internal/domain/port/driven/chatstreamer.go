package driven

import (
	"context"
	"errors"
	"iter"

	"github.com/ericfisherdev/codelens/internal/domain/model"
)

var (
	// ErrStreamConsumed is yielded when a FragmentStream is ranged over a second time.
	ErrStreamConsumed = errors.New("fragment stream already consumed")

	// ErrUnauthorized matches remote failures caused by a rejected API key.
	ErrUnauthorized = errors.New("api key rejected")

	// ErrRateLimited matches remote failures caused by quota or rate limits.
	ErrRateLimited = errors.New("rate limited")
)

// ChatRole is the author of a chat message.
type ChatRole string

const (
	ChatRoleSystem ChatRole = "system"
	ChatRoleUser   ChatRole = "user"
)

// ChatMessage is one role-tagged message of a chat completion request.
type ChatMessage struct {
	Role    ChatRole
	Content string
}

// ChatRequest carries everything needed for one streamed completion.
type ChatRequest struct {
	Model       model.ModelID
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// FragmentStream is a lazy, ordered, finite sequence of response fragments.
// It can be ranged over once; the underlying connection is released when the
// loop ends. A non-nil error terminates the sequence.
type FragmentStream = iter.Seq2[model.Fragment, error]

// ChatStreamer defines the driven port for incremental chat completions.
type ChatStreamer interface {
	// StreamChat issues the request with incremental delivery enabled. Errors
	// that occur before the first byte of the body (transport failure, a
	// non-success status) are returned directly; later failures are yielded
	// by the stream.
	StreamChat(ctx context.Context, req ChatRequest) (FragmentStream, error)
}
