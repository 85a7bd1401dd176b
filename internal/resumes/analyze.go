package resumes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/resumereview/internal/analysis"
	"github.com/muhammadolammi/resumereview/internal/apperr"
	"github.com/muhammadolammi/resumereview/internal/database"
	"github.com/muhammadolammi/resumereview/internal/metrics"
	"github.com/muhammadolammi/resumereview/internal/retry"
	"github.com/sirupsen/logrus"
	"github.com/sqlc-dev/pqtype"
)

// Analysis is the outcome of a completed analysis request.
type Analysis struct {
	Resume Resume
	Output analysis.Output
}

// Analyze runs uploaded -> analyzing -> analyzed for one record. A failed
// worker call puts the record back to uploaded.
func (s *Service) Analyze(ctx context.Context, owner uuid.UUID, id int64) (res *Analysis, err error) {
	defer func() {
		metrics.AnalysesTotal.WithLabelValues(outcome(err)).Inc()
	}()

	current, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusUploaded {
		return nil, conflict(current.Status)
	}

	claimed, err := s.claim(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	logger := s.log.WithFields(logrus.Fields{"resume_id": id, "user_id": owner})
	s.publish(ctx, claimed, StatusAnalyzing, "analysis started")

	req := analysis.Request{
		ResumeID:         claimed.ID,
		UserID:           owner.String(),
		FileURL:          claimed.FileUrl,
		JobDescription:   claimed.JobDescription.String,
		OriginalFileName: claimed.OriginalFileName,
		FileType:         claimed.FileType,
		StoragePath:      claimed.StoragePath,
	}
	start := time.Now()
	result, err := s.analyzer.Analyze(ctx, req)
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		logger.WithError(err).Error("analysis worker error")
		s.release(context.WithoutCancel(ctx), claimed, logger)
		return nil, apperr.ServiceUnavailable(msgUnavailable, err)
	}

	params := database.CompleteResumeAnalysisParams{
		ID:                claimed.ID,
		UserID:            owner,
		AnalysisStartedAt: claimed.AnalysisStartedAt,
		AnalysisResult:    pqtype.NullRawMessage{RawMessage: result.Analysis, Valid: true},
		AnalyzedAt:        sql.NullTime{Time: s.now(), Valid: true},
	}
	if result.EnhancedText != nil {
		params.EnhancedResumeText = sql.NullString{String: *result.EnhancedText, Valid: true}
	}
	done, err := s.store.CompleteResumeAnalysis(context.WithoutCancel(ctx), params)
	if errors.Is(err, sql.ErrNoRows) {
		// The claim was released while the worker ran; its result no longer
		// belongs to the record.
		logger.Warn("analysis claim lost before completion")
		return nil, apperr.ServiceUnavailable(msgUnavailable, errors.New("complete analysis: claim released"))
	}
	if err != nil {
		// The worker has finished; the record stays analyzing until the
		// reconciler releases it.
		logger.WithError(err).Error("failed to save analysis result")
		return nil, apperr.Internal(msgInternal, fmt.Errorf("complete analysis: %w", err))
	}

	s.publish(ctx, done, StatusAnalyzed, "analysis completed")
	return &Analysis{Resume: fromDB(done), Output: result.Output}, nil
}

// claim moves the record to analyzing only if it is still uploaded, so at
// most one caller gets past this point.
func (s *Service) claim(ctx context.Context, owner uuid.UUID, id int64) (database.Resume, error) {
	claimed, err := s.store.ClaimResumeForAnalysis(ctx, database.ClaimResumeForAnalysisParams{
		ID:                id,
		UserID:            owner,
		AnalysisStartedAt: sql.NullTime{Time: s.now(), Valid: true},
	})
	if err == nil {
		return claimed, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return database.Resume{}, apperr.Internal(msgInternal, fmt.Errorf("claim resume %d: %w", id, err))
	}

	current, err := s.load(ctx, owner, id)
	if err != nil {
		return database.Resume{}, err
	}
	return database.Resume{}, conflict(current.Status)
}

func (s *Service) release(ctx context.Context, r database.Resume, logger *logrus.Entry) {
	n, err := retry.Do(ctx, s.undo, func() (int64, error) {
		return s.store.ReleaseResumeClaim(ctx, database.ReleaseResumeClaimParams{
			ID:                r.ID,
			UserID:            r.UserID,
			AnalysisStartedAt: r.AnalysisStartedAt,
		})
	})
	if err != nil {
		logger.WithError(err).Error("failed to reset resume status")
		return
	}
	if n == 0 {
		logger.Warn("claim already released")
		return
	}
	s.publish(ctx, r, StatusUploaded, "analysis failed")
}

func conflict(status string) error {
	return apperr.Conflict(fmt.Sprintf("Resume is already %s", status), status)
}
