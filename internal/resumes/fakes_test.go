package resumes

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/resumereview/internal/analysis"
	"github.com/muhammadolammi/resumereview/internal/database"
	"github.com/muhammadolammi/resumereview/internal/events"
	"github.com/muhammadolammi/resumereview/internal/retry"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var errDB = errors.New("connection reset by peer")

type memStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]database.Resume

	createErr   error
	completeErr error
	releaseErr  error
	releases    int
}

func newMemStore() *memStore {
	return &memStore{rows: map[int64]database.Resume{}}
}

func (m *memStore) put(r database.Resume) database.Resume {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.ID) * time.Minute)
	}
	m.rows[r.ID] = r
	return r
}

func (m *memStore) row(id int64) database.Resume {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id]
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memStore) CreateResume(_ context.Context, arg database.CreateResumeParams) (database.Resume, error) {
	if m.createErr != nil {
		return database.Resume{}, m.createErr
	}
	return m.put(database.Resume{
		UserID:           arg.UserID,
		OriginalFileName: arg.OriginalFileName,
		StoragePath:      arg.StoragePath,
		FileUrl:          arg.FileUrl,
		FileSize:         arg.FileSize,
		FileType:         arg.FileType,
		JobDescription:   arg.JobDescription,
		Status:           StatusUploaded,
	}), nil
}

func (m *memStore) GetResumeForUser(_ context.Context, arg database.GetResumeForUserParams) (database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[arg.ID]
	if !ok || r.UserID != arg.UserID {
		return database.Resume{}, sql.ErrNoRows
	}
	return r, nil
}

func (m *memStore) ListResumesByUser(_ context.Context, userID uuid.UUID) ([]database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.Resume
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) ClaimResumeForAnalysis(_ context.Context, arg database.ClaimResumeForAnalysisParams) (database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[arg.ID]
	if !ok || r.UserID != arg.UserID || r.Status != StatusUploaded {
		return database.Resume{}, sql.ErrNoRows
	}
	r.Status = StatusAnalyzing
	r.AnalysisStartedAt = arg.AnalysisStartedAt
	m.rows[r.ID] = r
	return r, nil
}

func (m *memStore) ReleaseResumeClaim(_ context.Context, arg database.ReleaseResumeClaimParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases++
	if m.releaseErr != nil {
		return 0, m.releaseErr
	}
	r, ok := m.rows[arg.ID]
	if !ok || !sameClaim(r, arg.UserID, arg.AnalysisStartedAt) {
		return 0, nil
	}
	r.Status = StatusUploaded
	r.AnalysisStartedAt = sql.NullTime{}
	m.rows[arg.ID] = r
	return 1, nil
}

// sameClaim mirrors the owner, status and claim-time filter of the release
// and complete statements.
func sameClaim(r database.Resume, owner uuid.UUID, startedAt sql.NullTime) bool {
	return r.UserID == owner &&
		r.Status == StatusAnalyzing &&
		r.AnalysisStartedAt.Valid && startedAt.Valid &&
		r.AnalysisStartedAt.Time.Equal(startedAt.Time)
}

func (m *memStore) CompleteResumeAnalysis(_ context.Context, arg database.CompleteResumeAnalysisParams) (database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.completeErr != nil {
		return database.Resume{}, m.completeErr
	}
	r, ok := m.rows[arg.ID]
	if !ok || !sameClaim(r, arg.UserID, arg.AnalysisStartedAt) {
		return database.Resume{}, sql.ErrNoRows
	}
	r.Status = StatusAnalyzed
	r.AnalysisResult = arg.AnalysisResult
	r.AnalyzedAt = arg.AnalyzedAt
	if arg.EnhancedResumeText.Valid {
		r.EnhancedResumeText = arg.EnhancedResumeText
	}
	r.AnalysisStartedAt = sql.NullTime{}
	m.rows[r.ID] = r
	return r, nil
}

func (m *memStore) ListStaleAnalyzingResumes(_ context.Context, arg database.ListStaleAnalyzingResumesParams) ([]database.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.Resume
	for _, r := range m.rows {
		if r.Status == StatusAnalyzing && r.AnalysisStartedAt.Valid && r.AnalysisStartedAt.Time.Before(arg.AnalysisStartedAt.Time) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AnalysisStartedAt.Time.Before(out[j].AnalysisStartedAt.Time) })
	if len(out) > int(arg.Limit) {
		out = out[:arg.Limit]
	}
	return out, nil
}

type memObjects struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	removeErr error
	puts      int
	removes   int
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}}
}

func (o *memObjects) Put(_ context.Context, key string, data []byte, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.puts++
	if o.putErr != nil {
		return o.putErr
	}
	o.objects[key] = data
	return nil
}

func (o *memObjects) Get(_ context.Context, key string) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	data, ok := o.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (o *memObjects) Remove(_ context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.removes++
	if o.removeErr != nil {
		return o.removeErr
	}
	delete(o.objects, key)
	return nil
}

func (o *memObjects) URL(key string) string {
	return "https://files.example.com/" + key
}

func (o *memObjects) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.objects)
}

type analyzerFunc func(ctx context.Context, req analysis.Request) (*analysis.Result, error)

func (f analyzerFunc) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	return f(ctx, req)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) statuses() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Status)
	}
	return out
}

type fixture struct {
	svc     *Service
	store   *memStore
	objects *memObjects
	pub     *recordingPublisher
	hook    *test.Hook
	owner   uuid.UUID
	now     time.Time
}

func newFixture(analyzer analysis.Analyzer) *fixture {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	f := &fixture{
		store:   newMemStore(),
		objects: newMemObjects(),
		pub:     &recordingPublisher{},
		hook:    hook,
		owner:   uuid.MustParse("0d9b1f7e-2b7e-4a7c-9b51-3f1a8f0c2d11"),
		now:     time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
	}
	f.svc = NewService(f.store, f.objects, analyzer, f.pub, log)
	f.svc.now = func() time.Time { return f.now }
	f.svc.undo = retry.Config{Attempts: 3}
	return f
}

func (f *fixture) seed(status string) database.Resume {
	r := database.Resume{
		UserID:           f.owner,
		OriginalFileName: "jane_doe.pdf",
		StoragePath:      "resumes/" + f.owner.String() + "/abc.pdf",
		FileUrl:          "https://files.example.com/resumes/" + f.owner.String() + "/abc.pdf",
		FileSize:         1024,
		FileType:         "application/pdf",
		JobDescription:   sql.NullString{String: "Backend engineer", Valid: true},
		Status:           status,
	}
	if status == StatusAnalyzing {
		r.AnalysisStartedAt = sql.NullTime{Time: f.now.Add(-time.Minute), Valid: true}
	}
	return f.store.put(r)
}
