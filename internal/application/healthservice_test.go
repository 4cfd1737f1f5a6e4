package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/codelens/internal/domain/model"
)

func TestHealthService_Check(t *testing.T) {
	tests := []struct {
		name       string
		credential bool
		countErr   error
		wantStatus string
		wantOK     bool
	}{
		{name: "healthy", credential: true, wantStatus: HealthOK, wantOK: true},
		{name: "no credential", credential: false, wantStatus: HealthDegraded, wantOK: true},
		{name: "store down", credential: true, countErr: errors.New("database is locked"), wantStatus: HealthUnavailable, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemSessionStore()
			store.countErr = tt.countErr
			_ = store.Save(context.Background(), *model.NewSession("a", "t", model.DefaultModel, testNow()))

			report := NewHealthService(store, tt.credential).Check(context.Background())

			assert.Equal(t, tt.wantStatus, report.Status)
			assert.Equal(t, tt.wantOK, report.Healthy())
			assert.Equal(t, tt.credential, report.CredentialPresent)
			if tt.wantOK {
				assert.Equal(t, 1, report.ActiveSessions)
			}
		})
	}
}
