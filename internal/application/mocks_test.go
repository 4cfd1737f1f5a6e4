package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ericfisherdev/codelens/internal/domain/model"
	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
)

// --- Mock implementations shared by the service tests ---

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	getErr   error
	countErr error
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]model.Session)}
}

func (m *memSessionStore) Get(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSessionStore) Save(_ context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memSessionStore) DeleteIdleSince(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memSessionStore) DeleteAll(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.sessions))
	m.sessions = make(map[string]model.Session)
	return n, nil
}

func (m *memSessionStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.sessions), nil
}

type memAnalysisStore struct {
	mu      sync.Mutex
	records []model.Analysis
}

func (m *memAnalysisStore) Record(_ context.Context, a model.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, a)
	return nil
}

func (m *memAnalysisStore) ListRecent(_ context.Context, limit int) ([]model.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Analysis, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

type fakeStreamer struct {
	fragments []string
	streamErr error // yielded after all fragments
	callErr   error // returned by StreamChat itself
	calls     int
	lastReq   driven.ChatRequest
}

func (f *fakeStreamer) StreamChat(_ context.Context, req driven.ChatRequest) (driven.FragmentStream, error) {
	f.calls++
	f.lastReq = req
	if f.callErr != nil {
		return nil, f.callErr
	}
	return sliceStream(f.fragments, f.streamErr), nil
}

// sliceStream is a single-use stream over fixed fragments.
func sliceStream(fragments []string, tail error) driven.FragmentStream {
	consumed := false
	return func(yield func(model.Fragment, error) bool) {
		if consumed {
			yield("", driven.ErrStreamConsumed)
			return
		}
		consumed = true
		for _, f := range fragments {
			if !yield(model.Fragment(f), nil) {
				return
			}
		}
		if tail != nil {
			yield("", tail)
		}
	}
}

type sinkUpdate struct {
	markdown string
	done     bool
}

type recordingSink struct {
	updates []sinkUpdate
	failAt  int // 1-based update index that fails; 0 never fails
}

var errSinkClosed = errors.New("sink closed")

func (r *recordingSink) Update(markdown string, done bool) error {
	r.updates = append(r.updates, sinkUpdate{markdown: markdown, done: done})
	if r.failAt > 0 && len(r.updates) == r.failAt {
		return errSinkClosed
	}
	return nil
}

func (r *recordingSink) last() sinkUpdate {
	return r.updates[len(r.updates)-1]
}

type fakeCatalog struct {
	ids []string
	err error
}

func (f *fakeCatalog) ListModels(_ context.Context) ([]string, error) {
	return f.ids, f.err
}
