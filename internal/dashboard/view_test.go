package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/muhammadolammi/resumereview/internal/analysis"
	"github.com/muhammadolammi/resumereview/internal/resumes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	list    []resumes.Resume
	byID    map[int64]resumes.Resume
	gets    int
	analyze func(ctx context.Context, id int64) (*analysis.Output, error)
	upload  func(f UploadFile) (*resumes.Resume, error)
}

func (f *fakeAPI) List(context.Context) ([]resumes.Resume, error) { return f.list, nil }

func (f *fakeAPI) Get(_ context.Context, id int64) (*resumes.Resume, error) {
	f.gets++
	r, ok := f.byID[id]
	if !ok {
		return nil, &APIError{StatusCode: 404, Message: "Resume not found", Kind: "not_found"}
	}
	return &r, nil
}

func (f *fakeAPI) Upload(_ context.Context, u UploadFile) (*resumes.Resume, error) {
	return f.upload(u)
}

func (f *fakeAPI) Analyze(ctx context.Context, id int64) (*analysis.Output, error) {
	return f.analyze(ctx, id)
}

var sampleOutput = analysis.Output{
	CandidateStrengths:  []string{"Go"},
	CandidateWeaknesses: []string{"Rust"},
	RiskFactor:          analysis.LevelLow,
	RewardFactor:        analysis.RewardFactor{Level: analysis.LevelHigh},
	OverallFitRating:    8,
	Justification:       "Strong backend background",
}

func loadedView(t *testing.T, api *fakeAPI) *View {
	t.Helper()
	v := NewView(api)
	_, err := v.Load(context.Background())
	require.NoError(t, err)
	return v
}

func TestLoadKeepsServerOrder(t *testing.T) {
	api := &fakeAPI{list: []resumes.Resume{
		{ID: 3, Status: resumes.StatusUploaded},
		{ID: 1, Status: resumes.StatusAnalyzed},
	}}
	v := NewView(api)

	entries, err := v.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(3), entries[0].Resume.ID)
	assert.Equal(t, int64(1), entries[1].Resume.ID)
}

func TestAnalyzeShowsAnalyzingWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	analyzedAt := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	enhanced := "Improved resume"
	api := &fakeAPI{
		list: []resumes.Resume{{ID: 1, Status: resumes.StatusUploaded}},
		byID: map[int64]resumes.Resume{1: {
			ID:                 1,
			Status:             resumes.StatusAnalyzed,
			AnalysisResult:     []byte(`{"workflow":"n8n"}`),
			AnalyzedAt:         &analyzedAt,
			EnhancedResumeText: &enhanced,
		}},
		analyze: func(context.Context, int64) (*analysis.Output, error) {
			close(started)
			<-release
			out := sampleOutput
			return &out, nil
		},
	}
	v := loadedView(t, api)

	done := make(chan *Entry)
	go func() {
		e, err := v.Analyze(context.Background(), 1)
		assert.NoError(t, err)
		done <- e
	}()

	<-started
	assert.Equal(t, resumes.StatusAnalyzing, v.Entries()[0].Resume.Status)
	close(release)

	e := <-done
	assert.Equal(t, resumes.StatusAnalyzed, e.Resume.Status)
	require.NotNil(t, e.Analysis)
	assert.Equal(t, 8.0, e.Analysis.OverallFitRating)
	assert.Equal(t, resumes.StatusAnalyzed, v.Entries()[0].Resume.Status)
	assert.True(t, v.Entries()[0].Stale)

	fresh, err := v.Resume(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, api.gets)
	assert.False(t, fresh.Stale)
	assert.JSONEq(t, `{"workflow":"n8n"}`, string(fresh.Resume.AnalysisResult))
	require.NotNil(t, fresh.Resume.AnalyzedAt)
	assert.True(t, fresh.Resume.AnalyzedAt.Equal(analyzedAt))
	require.NotNil(t, fresh.Resume.EnhancedResumeText)
	assert.Equal(t, enhanced, *fresh.Resume.EnhancedResumeText)
	require.NotNil(t, fresh.Analysis)
	assert.Equal(t, 8.0, fresh.Analysis.OverallFitRating)
}

func TestAnalyzeConflictKeepsServerState(t *testing.T) {
	stored := []byte(`{"candidate_strengths":["Go"],"candidate_weaknesses":[],"risk_factor":"Low","reward_factor":{"level":"High","scenario":"","fit_duration":""},"overall_fit_rating":7,"justification":"ok"}`)
	api := &fakeAPI{
		list: []resumes.Resume{{ID: 1, Status: resumes.StatusAnalyzed, AnalysisResult: stored}},
		analyze: func(context.Context, int64) (*analysis.Output, error) {
			return nil, &APIError{StatusCode: 409, Message: "Resume is already analyzed", Kind: "conflict", Status: resumes.StatusAnalyzed}
		},
	}
	v := loadedView(t, api)

	_, err := v.Analyze(context.Background(), 1)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	e := v.Entries()[0]
	assert.Equal(t, resumes.StatusAnalyzed, e.Resume.Status)
	assert.False(t, e.Stale)
	require.NotNil(t, e.Analysis)
	assert.Equal(t, 7.0, e.Analysis.OverallFitRating)
	assert.JSONEq(t, string(stored), string(e.Resume.AnalysisResult))
}

func TestAnalyzeConflictShowsClaimFromElsewhere(t *testing.T) {
	api := &fakeAPI{
		list: []resumes.Resume{{ID: 1, Status: resumes.StatusUploaded}},
		analyze: func(context.Context, int64) (*analysis.Output, error) {
			return nil, &APIError{StatusCode: 409, Message: "Resume is already analyzing", Kind: "conflict", Status: resumes.StatusAnalyzing}
		},
	}
	v := loadedView(t, api)

	_, err := v.Analyze(context.Background(), 1)

	require.Error(t, err)
	e := v.Entries()[0]
	assert.Equal(t, resumes.StatusAnalyzing, e.Resume.Status)
	assert.True(t, e.Stale)
}

func TestAnalyzeFailureRevertsAndRefetches(t *testing.T) {
	workerDown := &APIError{StatusCode: 503, Message: "Analysis service unavailable. Please try again later.", Kind: "service_unavailable"}
	api := &fakeAPI{
		list: []resumes.Resume{{ID: 1, Status: resumes.StatusUploaded}},
		byID: map[int64]resumes.Resume{1: {ID: 1, Status: resumes.StatusUploaded, OriginalFileName: "cv.pdf"}},
		analyze: func(context.Context, int64) (*analysis.Output, error) {
			return nil, workerDown
		},
	}
	v := loadedView(t, api)

	_, err := v.Analyze(context.Background(), 1)

	require.ErrorIs(t, err, workerDown)
	cached := v.Entries()[0]
	assert.Equal(t, resumes.StatusUploaded, cached.Resume.Status)
	assert.True(t, cached.Stale)

	e, err := v.Resume(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, api.gets)
	assert.False(t, e.Stale)
	assert.Equal(t, "cv.pdf", e.Resume.OriginalFileName)
}

func TestResumeUsesFreshCache(t *testing.T) {
	api := &fakeAPI{list: []resumes.Resume{{ID: 1, Status: resumes.StatusUploaded}}}
	v := loadedView(t, api)

	e, err := v.Resume(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), e.Resume.ID)
	assert.Zero(t, api.gets)
}

func TestResumeMissingSurfacesError(t *testing.T) {
	api := &fakeAPI{byID: map[int64]resumes.Resume{}}
	v := NewView(api)

	_, err := v.Resume(context.Background(), 9)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "not_found", apiErr.Kind)
	assert.Empty(t, v.Entries())
}

func TestUploadPrependsEntry(t *testing.T) {
	api := &fakeAPI{
		list: []resumes.Resume{{ID: 1, Status: resumes.StatusAnalyzed}},
		upload: func(f UploadFile) (*resumes.Resume, error) {
			return &resumes.Resume{ID: 2, Status: resumes.StatusUploaded, OriginalFileName: f.FileName}, nil
		},
	}
	v := loadedView(t, api)

	e, err := v.Upload(context.Background(), UploadFile{FileName: "new.pdf"})

	require.NoError(t, err)
	assert.Equal(t, "new.pdf", e.Resume.OriginalFileName)
	entries := v.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].Resume.ID)
}

func TestLoadDecodesStoredAnalysis(t *testing.T) {
	api := &fakeAPI{list: []resumes.Resume{{
		ID:             1,
		Status:         resumes.StatusAnalyzed,
		AnalysisResult: []byte(`{"candidate_strengths":["Go"],"candidate_weaknesses":[],"risk_factor":"Low","reward_factor":{"level":"High","scenario":"","fit_duration":""},"overall_fit_rating":7,"justification":"ok"}`),
	}}}
	v := loadedView(t, api)

	e := v.Entries()[0]
	require.NotNil(t, e.Analysis)
	assert.Equal(t, 7.0, e.Analysis.OverallFitRating)
}
