package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/codelens/internal/domain/model"
	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
)

const csrfTokenBytes = 32

// SessionService owns the visitor session lifecycle and the two input
// acquisition paths. Writes to one session are serialised: each mutation
// reloads the stored session under a per-ID lock, so concurrent requests
// from the same visitor never overwrite each other's slots.
type SessionService struct {
	store        driven.SessionStore
	defaultModel model.ModelID
	ttl          time.Duration
	now          func() time.Time
	locks        sync.Map // session ID -> *sync.Mutex
}

// NewSessionService creates a SessionService. Sessions idle for longer than
// ttl are treated as gone.
func NewSessionService(store driven.SessionStore, defaultModel model.ModelID, ttl time.Duration) *SessionService {
	return &SessionService{
		store:        store,
		defaultModel: defaultModel,
		ttl:          ttl,
		now:          time.Now,
	}
}

// Load returns the live session with the given ID, or a freshly created one
// when id is empty, unknown or expired. Callers compare the returned ID with
// the one they asked for to know whether to reissue the cookie.
func (s *SessionService) Load(ctx context.Context, id string) (*model.Session, error) {
	now := s.now()

	if id != "" {
		sess, err := s.store.Get(ctx, id)
		switch {
		case err != nil:
			// An unreadable session (e.g. sealed with a previous process key)
			// is replaced rather than surfaced to the visitor.
			slog.Warn("discarding unreadable session", "error", err)
			s.discard(ctx, id)
		case sess == nil:
		case sess.IdleSince(now.Add(-s.ttl)):
			s.discard(ctx, id)
		default:
			return sess, nil
		}
	}

	token, err := newCSRFToken()
	if err != nil {
		return nil, err
	}

	sess := model.NewSession(uuid.NewString(), token, s.defaultModel, now)
	if err := s.store.Save(ctx, *sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// SelectModel stores the visitor's model choice. Unknown identifiers are
// rejected with model.ErrUnknownModel and leave the session unchanged.
func (s *SessionService) SelectModel(ctx context.Context, sess *model.Session, raw string) error {
	m, err := model.ParseModelID(raw)
	if err != nil {
		return err
	}
	return s.mutate(ctx, sess, func(cur *model.Session) {
		cur.Model = m
	})
}

// AcquireFile decodes uploaded bytes into the file slot. On a decode failure
// the slot is cleared, the session is still saved and model.ErrNotUTF8 is
// returned, so the failed upload yields no content.
func (s *SessionService) AcquireFile(ctx context.Context, sess *model.Session, name string, raw []byte) (model.CodeBlob, error) {
	code, decodeErr := model.DecodeUTF8(raw)

	err := s.mutate(ctx, sess, func(cur *model.Session) {
		cur.SetFile(name, code)
	})
	if err != nil {
		return "", err
	}
	if decodeErr != nil {
		return "", decodeErr
	}
	return code, nil
}

// AcquirePaste stores pasted text. The empty string clears the paste slot.
func (s *SessionService) AcquirePaste(ctx context.Context, sess *model.Session, text string) error {
	return s.mutate(ctx, sess, func(cur *model.Session) {
		cur.SetPaste(model.CodeBlob(text))
	})
}

// Touch refreshes the session's idle timer.
func (s *SessionService) Touch(ctx context.Context, sess *model.Session) error {
	return s.mutate(ctx, sess, func(*model.Session) {})
}

// PurgeAll removes every stored session. Called once at startup.
func (s *SessionService) PurgeAll(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	s.locks.Clear()
	return n, nil
}

// ExpireIdle deletes sessions idle for longer than the TTL.
func (s *SessionService) ExpireIdle(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteIdleSince(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, fmt.Errorf("expire sessions: %w", err)
	}
	s.pruneLocks(ctx)
	return n, nil
}

// RunJanitor expires idle sessions every interval until ctx is canceled.
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return nil
		case <-ticker.C:
			n, err := s.ExpireIdle(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				slog.Error("session expiry failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired idle sessions", "count", n)
			}
		}
	}
}

// mutate applies fn to the stored copy of sess while holding the session's
// lock, saves it and copies the result back into sess. A session deleted
// since it was loaded is written back from the caller's copy.
func (s *SessionService) mutate(ctx context.Context, sess *model.Session, fn func(*model.Session)) error {
	unlock := s.lock(sess.ID)
	defer unlock()

	cur, err := s.store.Get(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("reload session: %w", err)
	}
	if cur == nil {
		c := *sess
		cur = &c
	}

	fn(cur)
	if err := s.save(ctx, cur); err != nil {
		return err
	}
	*sess = *cur
	return nil
}

func (s *SessionService) lock(id string) func() {
	val, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := val.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// discard deletes a session that will not be served again. Failures only
// leave the row for the janitor.
func (s *SessionService) discard(ctx context.Context, id string) {
	if err := s.store.Delete(ctx, id); err != nil {
		slog.Warn("failed to delete stale session", "error", err)
		return
	}
	s.locks.Delete(id)
}

// pruneLocks drops lock entries whose session no longer exists. Locks held
// by an in-flight request are left alone.
func (s *SessionService) pruneLocks(ctx context.Context) {
	s.locks.Range(func(key, val any) bool {
		mu := val.(*sync.Mutex)
		if !mu.TryLock() {
			return true
		}
		defer mu.Unlock()

		sess, err := s.store.Get(ctx, key.(string))
		if err == nil && sess == nil {
			s.locks.Delete(key)
		}
		return true
	})
}

func (s *SessionService) save(ctx context.Context, sess *model.Session) error {
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, *sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
