package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/muhammadolammi/resumereview/internal/auth"
	"github.com/muhammadolammi/resumereview/internal/profiles"
	"github.com/muhammadolammi/resumereview/internal/resumes"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var caller = auth.Identity{
	ID:    uuid.MustParse("0d9b1f7e-3c1a-4c55-9e0c-5a1f6f0c2b11"),
	Email: "jane@example.com",
}

type fakeResumes struct {
	upload   func(owner uuid.UUID, in resumes.UploadInput) (*resumes.Resume, error)
	analyze  func(owner uuid.UUID, id int64) (*resumes.Analysis, error)
	list     func(owner uuid.UUID) ([]resumes.Resume, error)
	get      func(owner uuid.UUID, id int64) (*resumes.Resume, error)
	enhanced func(owner uuid.UUID, id int64) (*resumes.EnhancedFile, error)
	fileURL  func(owner uuid.UUID, id int64) (string, error)
}

func (f *fakeResumes) Upload(_ context.Context, owner uuid.UUID, in resumes.UploadInput) (*resumes.Resume, error) {
	return f.upload(owner, in)
}

func (f *fakeResumes) Analyze(_ context.Context, owner uuid.UUID, id int64) (*resumes.Analysis, error) {
	return f.analyze(owner, id)
}

func (f *fakeResumes) List(_ context.Context, owner uuid.UUID) ([]resumes.Resume, error) {
	return f.list(owner)
}

func (f *fakeResumes) Get(_ context.Context, owner uuid.UUID, id int64) (*resumes.Resume, error) {
	return f.get(owner, id)
}

func (f *fakeResumes) EnhancedDownload(_ context.Context, owner uuid.UUID, id int64) (*resumes.EnhancedFile, error) {
	return f.enhanced(owner, id)
}

func (f *fakeResumes) OriginalFileURL(_ context.Context, owner uuid.UUID, id int64) (string, error) {
	return f.fileURL(owner, id)
}

type fakeProfiles struct {
	getOrCreate func(owner uuid.UUID, email string) (*profiles.Profile, error)
	update      func(owner uuid.UUID, in profiles.UpdateInput) (*profiles.Profile, error)
}

func (f *fakeProfiles) GetOrCreate(_ context.Context, owner uuid.UUID, email string) (*profiles.Profile, error) {
	return f.getOrCreate(owner, email)
}

func (f *fakeProfiles) Update(_ context.Context, owner uuid.UUID, in profiles.UpdateInput) (*profiles.Profile, error) {
	return f.update(owner, in)
}

type fakeAuth struct {
	signUp  func(email, password, name string) (*auth.Session, error)
	login   func(email, password string) (*auth.Session, error)
	refresh func(token string) (*auth.Session, error)
}

func (f *fakeAuth) SignUp(_ context.Context, email, password, name string) (*auth.Session, error) {
	return f.signUp(email, password, name)
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*auth.Session, error) {
	return f.login(email, password)
}

func (f *fakeAuth) Refresh(_ context.Context, token string) (*auth.Session, error) {
	return f.refresh(token)
}

type harness struct {
	router   *gin.Engine
	resumes  *fakeResumes
	profiles *fakeProfiles
	auth     *fakeAuth
	logs     *test.Hook
	token    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	tokens := auth.NewTokens("test-secret", 15*time.Minute, time.Hour)
	pair, err := tokens.Issue(caller)
	require.NoError(t, err)

	h := &harness{
		resumes:  &fakeResumes{},
		profiles: &fakeProfiles{},
		auth:     &fakeAuth{},
		logs:     hook,
		token:    pair.AccessToken,
	}
	h.router = NewRouter(Deps{
		Resumes:  h.resumes,
		Profiles: h.profiles,
		Auth:     h.auth,
		Tokens:   tokens,
		Log:      log,
	})
	return h
}

func (h *harness) do(req *http.Request, authed bool) *httptest.ResponseRecorder {
	if authed {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) request(method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.do(req, true)
}
