package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/codelens/internal/domain/model"
)

// SessionStore defines the driven port for visitor session persistence.
// Get returns (nil, nil) if no session exists with the given ID.
type SessionStore interface {
	Get(ctx context.Context, id string) (*model.Session, error)
	Save(ctx context.Context, session model.Session) error
	Delete(ctx context.Context, id string) error

	// DeleteIdleSince removes sessions last updated before cutoff and returns
	// how many were removed.
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteAll removes every session. Called at startup so no visitor state
	// outlives the process that created it.
	DeleteAll(ctx context.Context) (int64, error)

	Count(ctx context.Context) (int, error)
}
