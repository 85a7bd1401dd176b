package resumes

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/muhammadolammi/resumereview/internal/database"
	"github.com/muhammadolammi/resumereview/internal/events"
	"github.com/muhammadolammi/resumereview/internal/metrics"
	"github.com/sirupsen/logrus"
)

const reconcileBatch = 100

// Reconciler returns records stuck in analyzing back to uploaded once they
// are older than any analysis could take.
type Reconciler struct {
	store      Store
	events     events.Publisher
	log        *logrus.Logger
	interval   time.Duration
	staleAfter time.Duration
	now        func() time.Time
}

func NewReconciler(store Store, pub events.Publisher, log *logrus.Logger, interval, staleAfter time.Duration) *Reconciler {
	return &Reconciler{
		store:      store,
		events:     pub,
		log:        log,
		interval:   interval,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Run blocks until ctx is done.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.ReconcileOnce(ctx); err != nil && ctx.Err() == nil {
			r.log.WithError(err).Error("reconcile failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ReconcileOnce releases one batch of stale claims and reports how many were reverted.
func (r *Reconciler) ReconcileOnce(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.staleAfter)
	stale, err := r.store.ListStaleAnalyzingResumes(ctx, database.ListStaleAnalyzingResumesParams{
		AnalysisStartedAt: sql.NullTime{Time: cutoff, Valid: true},
		Limit:             reconcileBatch,
	})
	if err != nil {
		return 0, fmt.Errorf("list stale resumes: %w", err)
	}

	reverted := 0
	for _, res := range stale {
		n, err := r.store.ReleaseResumeClaim(ctx, database.ReleaseResumeClaimParams{
			ID:                res.ID,
			UserID:            res.UserID,
			AnalysisStartedAt: res.AnalysisStartedAt,
		})
		if err != nil {
			r.log.WithError(err).WithField("resume_id", res.ID).Error("failed to release stale claim")
			continue
		}
		if n == 0 {
			continue
		}
		reverted++
		metrics.ReconciledTotal.Inc()
		r.log.WithFields(logrus.Fields{
			"resume_id":  res.ID,
			"user_id":    res.UserID,
			"started_at": res.AnalysisStartedAt.Time,
		}).Warn("released resume stuck in analyzing")

		err = r.events.Publish(ctx, events.Event{
			ResumeID:  res.ID,
			UserID:    res.UserID.String(),
			Status:    StatusUploaded,
			Message:   "analysis timed out",
			Timestamp: r.now(),
		})
		if err != nil {
			r.log.WithError(err).WithField("resume_id", res.ID).Warn("failed to publish update")
		}
	}
	return reverted, nil
}
