package application

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
)

func TestStreamRenderer_UpdatesWithCursorThenFinal(t *testing.T) {
	sink := &recordingSink{}
	r := NewStreamRenderer(sink)

	report, err := r.Render(sliceStream([]string{"## A", "\nb", "c"}, nil))
	require.NoError(t, err)

	require.Len(t, sink.updates, 4)
	assert.Equal(t, sinkUpdate{"## A" + Cursor, false}, sink.updates[0])
	assert.Equal(t, sinkUpdate{"## A\nb" + Cursor, false}, sink.updates[1])
	assert.Equal(t, sinkUpdate{"## A\nbc" + Cursor, false}, sink.updates[2])
	assert.Equal(t, sinkUpdate{"## A\nbc", true}, sink.updates[3])

	assert.Equal(t, "## A\nbc", report.Markdown)
	assert.Equal(t, 3, report.Fragments)
	assert.Equal(t, StateDone, r.state)
}

func TestStreamRenderer_EveryStreamingUpdateIsPrefixPlusCursor(t *testing.T) {
	frags := []string{"x", "yy", "", "zzz", "\n"}
	sink := &recordingSink{}

	report, err := NewStreamRenderer(sink).Render(sliceStream(frags, nil))
	require.NoError(t, err)

	full := strings.Join(frags, "")
	assert.Equal(t, full, report.Markdown)

	for _, u := range sink.updates[:len(sink.updates)-1] {
		assert.False(t, u.done)
		require.True(t, strings.HasSuffix(u.markdown, Cursor))
		assert.True(t, strings.HasPrefix(full, strings.TrimSuffix(u.markdown, Cursor)))
	}
	assert.Equal(t, sinkUpdate{full, true}, sink.last())
	assert.NotContains(t, sink.last().markdown, Cursor)
}

func TestStreamRenderer_SkipsEmptyFragments(t *testing.T) {
	sink := &recordingSink{}

	report, err := NewStreamRenderer(sink).Render(sliceStream([]string{"", "a", ""}, nil))
	require.NoError(t, err)

	assert.Len(t, sink.updates, 2)
	assert.Equal(t, 1, report.Fragments)
}

func TestStreamRenderer_EmptyStreamShowsNotice(t *testing.T) {
	sink := &recordingSink{}
	r := NewStreamRenderer(sink)

	report, err := r.Render(sliceStream(nil, nil))
	require.NoError(t, err)

	assert.True(t, report.Empty())
	require.Len(t, sink.updates, 1)
	assert.Equal(t, sinkUpdate{EmptyReportNotice, true}, sink.updates[0])
	assert.Equal(t, StateDone, r.state)
}

func TestStreamRenderer_StreamErrorStopsWithoutFinalUpdate(t *testing.T) {
	boom := errors.New("connection reset")
	sink := &recordingSink{}
	r := NewStreamRenderer(sink)

	report, err := r.Render(sliceStream([]string{"partial"}, boom))
	require.ErrorIs(t, err, boom)

	assert.Equal(t, "partial", report.Markdown)
	for _, u := range sink.updates {
		assert.False(t, u.done)
	}
	assert.Equal(t, StateStreaming, r.state)
}

func TestStreamRenderer_SinkErrorStopsConsumption(t *testing.T) {
	sink := &recordingSink{failAt: 1}

	report, err := NewStreamRenderer(sink).Render(sliceStream([]string{"a", "b", "c"}, nil))
	require.ErrorIs(t, err, errSinkClosed)

	assert.Len(t, sink.updates, 1)
	assert.Equal(t, "a", report.Markdown)
}

func TestStreamRenderer_ConsumedStream(t *testing.T) {
	stream := sliceStream([]string{"a"}, nil)

	_, err := NewStreamRenderer(&recordingSink{}).Render(stream)
	require.NoError(t, err)

	_, err = NewStreamRenderer(&recordingSink{}).Render(stream)
	assert.ErrorIs(t, err, driven.ErrStreamConsumed)
}

func TestStreamRenderer_DoneIsTerminal(t *testing.T) {
	r := NewStreamRenderer(&recordingSink{})

	_, err := r.Render(sliceStream([]string{"a"}, nil))
	require.NoError(t, err)

	_, err = r.Render(sliceStream([]string{"b"}, nil))
	assert.ErrorIs(t, err, driven.ErrStreamConsumed)
	assert.Equal(t, StateDone, r.state)
}
