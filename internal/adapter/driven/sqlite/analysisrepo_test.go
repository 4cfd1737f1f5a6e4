package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/codelens/internal/domain/model"
)

func newAnalysis(id string, started time.Time, status model.AnalysisStatus) model.Analysis {
	return model.Analysis{
		ID:          id,
		SessionID:   "sess",
		Model:       model.DefaultModel,
		Source:      model.InputSourcePaste,
		InputBytes:  20,
		OutputBytes: 512,
		Fragments:   40,
		Status:      status,
		StartedAt:   started,
		FinishedAt:  started.Add(3 * time.Second),
	}
}

func TestAnalysisRepo_RecordAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepo(db)
	ctx := context.Background()

	a := newAnalysis("a1", sessionTime, model.AnalysisStatusOK)
	require.NoError(t, repo.Record(ctx, a))

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "sess", got[0].SessionID)
	assert.Equal(t, model.DefaultModel, got[0].Model)
	assert.Equal(t, model.InputSourcePaste, got[0].Source)
	assert.Equal(t, 20, got[0].InputBytes)
	assert.Equal(t, 512, got[0].OutputBytes)
	assert.Equal(t, 40, got[0].Fragments)
	assert.Equal(t, model.AnalysisStatusOK, got[0].Status)
	assert.Equal(t, 3*time.Second, got[0].Duration())
}

func TestAnalysisRepo_ListNewestFirstWithLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepo(db)
	ctx := context.Background()

	for i, id := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Record(ctx, newAnalysis(id, sessionTime.Add(time.Duration(i)*time.Minute), model.AnalysisStatusOK)))
	}

	got, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
}

func TestAnalysisRepo_ListEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepo(db)

	got, err := repo.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestAnalysisRepo_RecordsError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepo(db)
	ctx := context.Background()

	a := newAnalysis("a1", sessionTime, model.AnalysisStatusError)
	a.Error = "groq api error (status 401)"
	require.NoError(t, repo.Record(ctx, a))

	got, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.AnalysisStatusError, got[0].Status)
	assert.Equal(t, "groq api error (status 401)", got[0].Error)
}

func TestAnalysisRepo_RejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepo(db)

	err := repo.Record(context.Background(), newAnalysis("a1", sessionTime, model.AnalysisStatus("weird")))
	require.Error(t, err)
}

func TestAnalysisRepo_DuplicateID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalysisRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, newAnalysis("dup", sessionTime, model.AnalysisStatusOK)))
	require.Error(t, repo.Record(ctx, newAnalysis("dup", sessionTime, model.AnalysisStatusOK)))
}
