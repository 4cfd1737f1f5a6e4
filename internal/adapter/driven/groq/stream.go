package groq

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ericfisherdev/codelens/internal/domain/model"
	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
)

const (
	doneSentinel = "[DONE]"
	maxEventSize = 1 << 20
)

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *errorBody `json:"error"`
}

// newFragmentStream wraps an event-stream body. The body is closed when the
// consumer's range loop ends, whether by exhaustion, error or break.
func newFragmentStream(body io.ReadCloser) driven.FragmentStream {
	consumed := false
	return func(yield func(model.Fragment, error) bool) {
		if consumed {
			yield("", driven.ErrStreamConsumed)
			return
		}
		consumed = true
		defer body.Close()

		var streamErr error
		err := readEvents(body, func(data string) bool {
			if data == doneSentinel {
				return false
			}

			var chunk chatChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				streamErr = fmt.Errorf("decoding stream chunk: %w", err)
				return false
			}
			if chunk.Error != nil {
				streamErr = chunk.Error.toAPIError(0)
				return false
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				return true
			}
			return yield(model.Fragment(chunk.Choices[0].Delta.Content), nil)
		})
		if streamErr == nil && err != nil {
			streamErr = fmt.Errorf("reading chat stream: %w", err)
		}
		if streamErr != nil {
			yield("", streamErr)
		}
	}
}

// readEvents splits a server-sent event stream into data payloads and calls
// fn for each one. Multi-line data fields are joined with "\n". Comments and
// non-data fields are ignored. Returning false from fn stops reading.
func readEvents(r io.Reader, fn func(data string) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxEventSize)

	var data []string
	dispatch := func() bool {
		if len(data) == 0 {
			return true
		}
		payload := strings.Join(data, "\n")
		data = data[:0]
		return fn(payload)
	}

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		switch {
		case line == "":
			if !dispatch() {
				return nil
			}
		case strings.HasPrefix(line, ":"):
			// keep-alive comment
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// A final event without its blank terminator is still delivered.
	dispatch()
	return nil
}
