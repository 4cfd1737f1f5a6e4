package driven

import (
	"context"

	"github.com/ericfisherdev/codelens/internal/domain/model"
)

// AnalysisStore defines the driven port for the analysis audit log.
type AnalysisStore interface {
	Record(ctx context.Context, a model.Analysis) error

	// ListRecent returns at most limit analyses, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.Analysis, error)
}
