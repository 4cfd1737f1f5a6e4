package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/ericfisherdev/codelens/internal/domain/model"
	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
)

const catalogTimeout = 3 * time.Second

// Availability is whether the remote service currently lists a model.
type Availability string

const (
	AvailabilityUnknown     Availability = "unknown"
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

// ModelOption is one entry of the model selector.
type ModelOption struct {
	ID           model.ModelID
	Default      bool
	Availability Availability
}

// ModelService reports which of the fixed models the remote service serves.
// The selectable set never changes; availability is informational only.
type ModelService struct {
	catalog      driven.ModelCatalog
	defaultModel model.ModelID
}

// NewModelService creates a ModelService. catalog may be nil, in which case
// every model reports AvailabilityUnknown.
func NewModelService(catalog driven.ModelCatalog, defaultModel model.ModelID) *ModelService {
	return &ModelService{catalog: catalog, defaultModel: defaultModel}
}

// Options lists the fixed models in display order with their availability.
// A catalog failure is logged and degrades to AvailabilityUnknown.
func (s *ModelService) Options(ctx context.Context) []ModelOption {
	served := s.served(ctx)

	models := model.Models()
	opts := make([]ModelOption, 0, len(models))
	for _, m := range models {
		opt := ModelOption{ID: m, Default: m == s.defaultModel, Availability: AvailabilityUnknown}
		if served != nil {
			if _, ok := served[string(m)]; ok {
				opt.Availability = AvailabilityAvailable
			} else {
				opt.Availability = AvailabilityUnavailable
			}
		}
		opts = append(opts, opt)
	}
	return opts
}

func (s *ModelService) served(ctx context.Context) map[string]struct{} {
	if s.catalog == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()

	ids, err := s.catalog.ListModels(ctx)
	if err != nil {
		slog.Warn("model availability unknown", "error", err)
		return nil
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
