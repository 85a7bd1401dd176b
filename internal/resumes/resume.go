// Package resumes implements the resume lifecycle: upload, analysis and the
// read-only projections over stored records.
package resumes

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/resumereview/internal/database"
)

const (
	StatusUploaded  = "uploaded"
	StatusAnalyzing = "analyzing"
	StatusAnalyzed  = "analyzed"
)

// MaxFileSize is inclusive.
const MaxFileSize = 5 << 20

// Store is the subset of database.Querier the lifecycle needs.
type Store interface {
	CreateResume(ctx context.Context, arg database.CreateResumeParams) (database.Resume, error)
	GetResumeForUser(ctx context.Context, arg database.GetResumeForUserParams) (database.Resume, error)
	ListResumesByUser(ctx context.Context, userID uuid.UUID) ([]database.Resume, error)
	ClaimResumeForAnalysis(ctx context.Context, arg database.ClaimResumeForAnalysisParams) (database.Resume, error)
	ReleaseResumeClaim(ctx context.Context, arg database.ReleaseResumeClaimParams) (int64, error)
	CompleteResumeAnalysis(ctx context.Context, arg database.CompleteResumeAnalysisParams) (database.Resume, error)
	ListStaleAnalyzingResumes(ctx context.Context, arg database.ListStaleAnalyzingResumesParams) ([]database.Resume, error)
}

type Resume struct {
	ID                 int64           `json:"id"`
	UserID             uuid.UUID       `json:"user_id"`
	OriginalFileName   string          `json:"original_file_name"`
	StoragePath        string          `json:"storage_path"`
	FileURL            string          `json:"file_url"`
	FileSize           int64           `json:"file_size"`
	FileType           string          `json:"file_type"`
	JobDescription     *string         `json:"job_description"`
	Status             string          `json:"status"`
	AnalysisResult     json.RawMessage `json:"analysis_result"`
	AnalyzedAt         *time.Time      `json:"analyzed_at"`
	EnhancedResumeText *string         `json:"enhanced_resume_text"`
	CreatedAt          time.Time       `json:"created_at"`
}

func fromDB(r database.Resume) Resume {
	res := Resume{
		ID:               r.ID,
		UserID:           r.UserID,
		OriginalFileName: r.OriginalFileName,
		StoragePath:      r.StoragePath,
		FileURL:          r.FileUrl,
		FileSize:         r.FileSize,
		FileType:         r.FileType,
		Status:           r.Status,
		CreatedAt:        r.CreatedAt,
	}
	if r.JobDescription.Valid {
		jd := r.JobDescription.String
		res.JobDescription = &jd
	}
	if r.AnalysisResult.Valid {
		res.AnalysisResult = r.AnalysisResult.RawMessage
	}
	if r.AnalyzedAt.Valid {
		at := r.AnalyzedAt.Time
		res.AnalyzedAt = &at
	}
	if r.EnhancedResumeText.Valid {
		text := r.EnhancedResumeText.String
		res.EnhancedResumeText = &text
	}
	return res
}

func fromDBList(rows []database.Resume) []Resume {
	out := make([]Resume, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromDB(r))
	}
	return out
}
