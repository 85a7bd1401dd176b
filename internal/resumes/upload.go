package resumes

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/muhammadolammi/resumereview/internal/apperr"
	"github.com/muhammadolammi/resumereview/internal/database"
	"github.com/muhammadolammi/resumereview/internal/document"
	"github.com/muhammadolammi/resumereview/internal/metrics"
	"github.com/muhammadolammi/resumereview/internal/retry"
	"github.com/sirupsen/logrus"
)

type UploadInput struct {
	FileName    string
	ContentType string
	// Size is the declared size. Zero means len(Data).
	Size           int64
	Data           []byte
	JobDescription string
}

// Upload validates the file, stores it and records it as uploaded. Nothing is
// written until every check has passed, and a stored object whose record
// cannot be inserted is removed again.
func (s *Service) Upload(ctx context.Context, owner uuid.UUID, in UploadInput) (res *Resume, err error) {
	defer func() {
		metrics.UploadsTotal.WithLabelValues(outcome(err)).Inc()
	}()

	if err := validateUpload(in); err != nil {
		return nil, err
	}
	size := in.Size
	if size == 0 {
		size = int64(len(in.Data))
	}

	key := StorageKey(owner, in.FileName, in.ContentType)
	logger := s.log.WithFields(logrus.Fields{"user_id": owner, "storage_path": key})

	if err := s.objects.Put(ctx, key, in.Data, in.ContentType); err != nil {
		logger.WithError(err).Error("storage upload error")
		return nil, apperr.Internal(msgStorageFail, err)
	}

	row, err := s.store.CreateResume(ctx, database.CreateResumeParams{
		UserID:           owner,
		OriginalFileName: in.FileName,
		StoragePath:      key,
		FileUrl:          s.objects.URL(key),
		FileSize:         size,
		FileType:         in.ContentType,
		JobDescription:   sql.NullString{String: in.JobDescription, Valid: in.JobDescription != ""},
	})
	if err != nil {
		logger.WithError(err).Error("database insert error")
		undoCtx := context.WithoutCancel(ctx)
		rmErr := retry.Run(undoCtx, s.undo, func() error {
			return s.objects.Remove(undoCtx, key)
		})
		if rmErr != nil {
			logger.WithError(rmErr).Error("failed to remove orphaned upload")
		}
		return nil, apperr.Internal(msgDatabaseFail, err)
	}

	s.publish(ctx, row, StatusUploaded, "resume uploaded")
	out := fromDB(row)
	return &out, nil
}

func validateUpload(in UploadInput) error {
	if in.FileName == "" && len(in.Data) == 0 {
		return apperr.Validation("No file provided")
	}
	if !document.Allowed(in.ContentType) {
		return apperr.Validation("Invalid file type. Only PDF and DOCX files are allowed.")
	}
	size := in.Size
	if size == 0 {
		size = int64(len(in.Data))
	}
	if size > MaxFileSize || int64(len(in.Data)) > MaxFileSize {
		return apperr.Validation("File size too large. Maximum size is 5MB.")
	}
	if err := document.Verify(in.ContentType, in.Data); err != nil {
		return &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: "File content does not match its declared type.",
			Err:     err,
		}
	}
	return nil
}

// StorageKey places the file under its owner with a random name. The original
// extension is kept; names without one get the extension of their type.
func StorageKey(owner uuid.UUID, fileName, contentType string) string {
	ext := strings.TrimPrefix(filepath.Ext(fileName), ".")
	if ext == "" {
		ext = document.Extension(contentType)
	}
	return fmt.Sprintf("resumes/%s/%s.%s", owner, uuid.NewString(), strings.ToLower(ext))
}

// EnhancedFileName swaps the original extension for "_enhanced.txt".
func EnhancedFileName(original string) string {
	base := strings.TrimSuffix(original, filepath.Ext(original))
	return base + "_enhanced.txt"
}
