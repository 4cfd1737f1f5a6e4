package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/codelens/internal/domain/model"
	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port interface.
// Everything but the ID and timestamps is stored as a sealed JSON payload.
type SessionRepo struct {
	db     *DB
	sealer *Sealer
}

// NewSessionRepo creates a new SessionRepo backed by the given DB.
func NewSessionRepo(db *DB, sealer *Sealer) *SessionRepo {
	return &SessionRepo{db: db, sealer: sealer}
}

// sessionPayload is the sealed part of a session row.
type sessionPayload struct {
	Model     string      `json:"model"`
	File      slotPayload `json:"file"`
	Paste     slotPayload `json:"paste"`
	Seq       uint64      `json:"seq"`
	CSRFToken string      `json:"csrf_token"`
}

type slotPayload struct {
	Text     string `json:"text,omitempty"`
	FileName string `json:"file_name,omitempty"`
	Seq      uint64 `json:"seq,omitempty"`
}

// Get loads a session by ID. Returns (nil, nil) if it does not exist.
func (r *SessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	const query = `SELECT payload, created_at, updated_at FROM sessions WHERE id = ?`

	var sealed, createdAt, updatedAt string
	err := r.db.Reader.QueryRowContext(ctx, query, id).Scan(&sealed, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	raw, err := r.sealer.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("open session payload: %w", err)
	}

	var p sessionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}

	s := &model.Session{
		ID:        id,
		Model:     model.ModelID(p.Model),
		File:      model.InputSlot{Text: model.CodeBlob(p.File.Text), FileName: p.File.FileName, Seq: p.File.Seq},
		Paste:     model.InputSlot{Text: model.CodeBlob(p.Paste.Text), Seq: p.Paste.Seq},
		Seq:       p.Seq,
		CSRFToken: p.CSRFToken,
	}

	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return s, nil
}

// Save inserts or replaces a session. created_at is kept from the first insert.
func (r *SessionRepo) Save(ctx context.Context, s model.Session) error {
	raw, err := json.Marshal(sessionPayload{
		Model:     string(s.Model),
		File:      slotPayload{Text: string(s.File.Text), FileName: s.File.FileName, Seq: s.File.Seq},
		Paste:     slotPayload{Text: string(s.Paste.Text), Seq: s.Paste.Seq},
		Seq:       s.Seq,
		CSRFToken: s.CSRFToken,
	})
	if err != nil {
		return fmt.Errorf("encode session payload: %w", err)
	}

	sealed, err := r.sealer.Seal(raw)
	if err != nil {
		return fmt.Errorf("seal session payload: %w", err)
	}

	const query = `
		INSERT INTO sessions (id, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Writer.ExecContext(ctx, query, s.ID, sealed, formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteIdleSince removes sessions not updated since cutoff.
func (r *SessionRepo) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE updated_at < ?`
	res, err := r.db.Writer.ExecContext(ctx, query, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}
	return res.RowsAffected()
}

// DeleteAll removes every session.
func (r *SessionRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.Writer.ExecContext(ctx, `DELETE FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("delete all sessions: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored sessions.
func (r *SessionRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}
