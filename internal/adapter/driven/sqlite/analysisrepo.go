package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/codelens/internal/domain/model"
	"github.com/ericfisherdev/codelens/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AnalysisStore = (*AnalysisRepo)(nil)

// AnalysisRepo is the SQLite implementation of the AnalysisStore port interface.
type AnalysisRepo struct {
	db *DB
}

// NewAnalysisRepo creates a new AnalysisRepo backed by the given DB.
func NewAnalysisRepo(db *DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

// Record inserts one audit row. IDs are unique; recording the same ID twice fails.
func (r *AnalysisRepo) Record(ctx context.Context, a model.Analysis) error {
	const query = `
		INSERT INTO analyses (
			id, session_id, model, source, input_bytes, output_bytes,
			fragments, status, error, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		a.ID, a.SessionID, string(a.Model), string(a.Source), a.InputBytes, a.OutputBytes,
		a.Fragments, string(a.Status), a.Error, formatTime(a.StartedAt), formatTime(a.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("record analysis %s: %w", a.ID, err)
	}
	return nil
}

// ListRecent returns up to limit analyses ordered by start time, newest first.
func (r *AnalysisRepo) ListRecent(ctx context.Context, limit int) ([]model.Analysis, error) {
	const query = `
		SELECT id, session_id, model, source, input_bytes, output_bytes,
		       fragments, status, error, started_at, finished_at
		FROM analyses
		ORDER BY started_at DESC, id
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	analyses := []model.Analysis{}
	for rows.Next() {
		var (
			a                   model.Analysis
			modelID, source     string
			status              string
			startedAt, finished string
		)
		if err := rows.Scan(
			&a.ID, &a.SessionID, &modelID, &source, &a.InputBytes, &a.OutputBytes,
			&a.Fragments, &status, &a.Error, &startedAt, &finished,
		); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}

		a.Model = model.ModelID(modelID)
		a.Source = model.InputSource(source)
		a.Status = model.AnalysisStatus(status)

		if a.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at for analysis %s: %w", a.ID, err)
		}
		if a.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("parse finished_at for analysis %s: %w", a.ID, err)
		}

		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}

	return analyses, nil
}
