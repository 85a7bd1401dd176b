package resumes

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/muhammadolammi/resumereview/internal/database"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileOnceReleasesStaleClaims(t *testing.T) {
	f := newFixture(nil)
	log, _ := test.NewNullLogger()

	stuck := f.seed(StatusAnalyzing)
	f.store.mu.Lock()
	row := f.store.rows[stuck.ID]
	row.AnalysisStartedAt = sql.NullTime{Time: f.now.Add(-20 * time.Minute), Valid: true}
	f.store.rows[stuck.ID] = row
	f.store.mu.Unlock()

	fresh := f.seed(StatusAnalyzing)
	done := f.seed(StatusAnalyzed)

	rec := NewReconciler(f.store, f.pub, log, time.Minute, 15*time.Minute)
	rec.now = func() time.Time { return f.now }

	n, err := rec.ReconcileOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, StatusUploaded, f.store.row(stuck.ID).Status)
	assert.False(t, f.store.row(stuck.ID).AnalysisStartedAt.Valid)
	assert.Equal(t, StatusAnalyzing, f.store.row(fresh.ID).Status)
	assert.Equal(t, StatusAnalyzed, f.store.row(done.ID).Status)
	assert.Equal(t, []string{StatusUploaded}, f.pub.statuses())

	n, err = rec.ReconcileOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestReconcilerRunStopsOnCancel(t *testing.T) {
	f := newFixture(nil)
	log, _ := test.NewNullLogger()
	rec := NewReconciler(f.store, f.pub, log, time.Hour, 15*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		rec.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("reconciler did not stop")
	}
}

// outdatedListStore lists rows as they were before a newer claim landed.
type outdatedListStore struct {
	*memStore
	listed []database.Resume
}

func (s *outdatedListStore) ListStaleAnalyzingResumes(context.Context, database.ListStaleAnalyzingResumesParams) ([]database.Resume, error) {
	return s.listed, nil
}

func TestReconcileOnceSkipsReclaimedRecord(t *testing.T) {
	f := newFixture(nil)
	log, _ := test.NewNullLogger()

	r := f.seed(StatusAnalyzing)
	listed := r
	listed.AnalysisStartedAt = sql.NullTime{Time: f.now.Add(-time.Hour), Valid: true}

	rec := NewReconciler(&outdatedListStore{memStore: f.store, listed: []database.Resume{listed}}, f.pub, log, time.Minute, 15*time.Minute)
	rec.now = func() time.Time { return f.now }

	n, err := rec.ReconcileOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, StatusAnalyzing, f.store.row(r.ID).Status)
	assert.Empty(t, f.pub.statuses())
}
