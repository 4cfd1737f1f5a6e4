package driven

import "context"

// ModelCatalog lists the model identifiers the remote service currently serves.
type ModelCatalog interface {
	ListModels(ctx context.Context) ([]string, error)
}
