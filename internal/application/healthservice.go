package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
)

// Health status values.
const (
	HealthOK          = "ok"
	HealthDegraded    = "degraded"    // serving, but reviews are disabled
	HealthUnavailable = "unavailable" // storage unreachable
)

// HealthReport is the liveness view served by the health endpoint.
type HealthReport struct {
	Status            string
	CredentialPresent bool
	DatabaseOK        bool
	ActiveSessions    int
}

// Healthy reports whether the process can serve requests. A missing
// credential does not make the process unhealthy since the page still
// explains how to fix it.
func (r HealthReport) Healthy() bool {
	return r.DatabaseOK
}

// HealthService probes the session store and reports credential presence.
type HealthService struct {
	sessions          driven.SessionStore
	credentialPresent bool
}

// NewHealthService creates a new HealthService with the required dependencies.
func NewHealthService(sessions driven.SessionStore, credentialPresent bool) *HealthService {
	return &HealthService{
		sessions:          sessions,
		credentialPresent: credentialPresent,
	}
}

// CredentialPresent reports whether an API key was configured at startup.
func (s *HealthService) CredentialPresent() bool {
	return s.credentialPresent
}

// Check runs the probes.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{CredentialPresent: s.credentialPresent}

	n, err := s.sessions.Count(ctx)
	if err != nil {
		slog.Error("health probe: session store", "error", err)
		report.Status = HealthUnavailable
		return report
	}

	report.DatabaseOK = true
	report.ActiveSessions = n
	if s.credentialPresent {
		report.Status = HealthOK
	} else {
		report.Status = HealthDegraded
	}
	return report
}
