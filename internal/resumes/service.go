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
	"github.com/muhammadolammi/resumereview/internal/events"
	"github.com/muhammadolammi/resumereview/internal/metrics"
	"github.com/muhammadolammi/resumereview/internal/retry"
	"github.com/muhammadolammi/resumereview/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	msgNotFound     = "Resume not found"
	msgInternal     = "Internal server error"
	msgUnavailable  = "Analysis service unavailable. Please try again later."
	msgNoEnhanced   = "Enhanced resume not available"
	msgIDRequired   = "Resume ID is required"
	msgStorageFail  = "Failed to upload file to storage"
	msgDatabaseFail = "Failed to save resume record"
)

type Service struct {
	store    Store
	objects  storage.ObjectStore
	analyzer analysis.Analyzer
	events   events.Publisher
	log      *logrus.Logger
	now      func() time.Time
	undo     retry.Config
}

func NewService(store Store, objects storage.ObjectStore, analyzer analysis.Analyzer, pub events.Publisher, log *logrus.Logger) *Service {
	return &Service{
		store:    store,
		objects:  objects,
		analyzer: analyzer,
		events:   pub,
		log:      log,
		now:      time.Now,
		undo:     retry.Compensation,
	}
}

func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]Resume, error) {
	rows, err := s.store.ListResumesByUser(ctx, owner)
	if err != nil {
		return nil, apperr.Internal(msgInternal, fmt.Errorf("list resumes: %w", err))
	}
	return fromDBList(rows), nil
}

func (s *Service) Get(ctx context.Context, owner uuid.UUID, id int64) (*Resume, error) {
	row, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	res := fromDB(row)
	return &res, nil
}

// OriginalFileURL returns where the uploaded file can be fetched.
func (s *Service) OriginalFileURL(ctx context.Context, owner uuid.UUID, id int64) (string, error) {
	row, err := s.load(ctx, owner, id)
	if err != nil {
		return "", err
	}
	return row.FileUrl, nil
}

type EnhancedFile struct {
	FileName string
	Text     string
}

func (s *Service) EnhancedDownload(ctx context.Context, owner uuid.UUID, id int64) (*EnhancedFile, error) {
	row, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if !row.EnhancedResumeText.Valid || row.EnhancedResumeText.String == "" {
		return nil, apperr.NotFound(msgNoEnhanced)
	}
	return &EnhancedFile{
		FileName: EnhancedFileName(row.OriginalFileName),
		Text:     row.EnhancedResumeText.String,
	}, nil
}

// load reads a record scoped to its owner. Records of other owners are
// indistinguishable from missing ones.
func (s *Service) load(ctx context.Context, owner uuid.UUID, id int64) (database.Resume, error) {
	if id <= 0 {
		return database.Resume{}, apperr.Validation(msgIDRequired)
	}
	row, err := s.store.GetResumeForUser(ctx, database.GetResumeForUserParams{ID: id, UserID: owner})
	if errors.Is(err, sql.ErrNoRows) {
		return database.Resume{}, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return database.Resume{}, apperr.Internal(msgInternal, fmt.Errorf("get resume %d: %w", id, err))
	}
	return row, nil
}

func (s *Service) publish(ctx context.Context, r database.Resume, status, message string) {
	err := s.events.Publish(ctx, events.Event{
		ResumeID:  r.ID,
		UserID:    r.UserID.String(),
		Status:    status,
		Message:   message,
		Timestamp: s.now(),
	})
	if err != nil {
		s.log.WithError(err).WithField("resume_id", r.ID).Warn("failed to publish update")
	}
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindNotFound:
		return metrics.OutcomeValidation
	case apperr.KindConflict:
		return metrics.OutcomeConflict
	case apperr.KindServiceUnavailable:
		return metrics.OutcomeServiceUnavailable
	default:
		return metrics.OutcomeError
	}
}
