package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/codelens/internal/domain/model"
)

func testNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestModelService_Options(t *testing.T) {
	catalog := &fakeCatalog{ids: []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant", "whisper-large-v3"}}
	svc := NewModelService(catalog, model.DefaultModel)

	opts := svc.Options(context.Background())
	require.Len(t, opts, 3)

	assert.Equal(t, model.ModelLlama33Versatile, opts[0].ID)
	assert.True(t, opts[0].Default)
	assert.Equal(t, AvailabilityAvailable, opts[0].Availability)

	assert.Equal(t, model.ModelLlama31Versatile, opts[1].ID)
	assert.Equal(t, AvailabilityUnavailable, opts[1].Availability)

	assert.Equal(t, model.ModelLlama31Instant, opts[2].ID)
	assert.Equal(t, AvailabilityAvailable, opts[2].Availability)
	assert.False(t, opts[2].Default)
}

func TestModelService_CatalogFailureIsUnknown(t *testing.T) {
	svc := NewModelService(&fakeCatalog{err: errors.New("503")}, model.DefaultModel)

	for _, opt := range svc.Options(context.Background()) {
		assert.Equal(t, AvailabilityUnknown, opt.Availability)
	}
}

func TestModelService_NilCatalog(t *testing.T) {
	svc := NewModelService(nil, model.ModelLlama31Instant)

	opts := svc.Options(context.Background())
	require.Len(t, opts, 3)
	assert.True(t, opts[2].Default)
	for _, opt := range opts {
		assert.Equal(t, AvailabilityUnknown, opt.Availability)
	}
}
