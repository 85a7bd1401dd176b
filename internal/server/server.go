// Package server exposes the service over HTTP with gin.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/muhammadolammi/resumereview/internal/auth"
	"github.com/muhammadolammi/resumereview/internal/metrics"
	"github.com/muhammadolammi/resumereview/internal/profiles"
	"github.com/muhammadolammi/resumereview/internal/resumes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type ResumeService interface {
	Upload(ctx context.Context, owner uuid.UUID, in resumes.UploadInput) (*resumes.Resume, error)
	Analyze(ctx context.Context, owner uuid.UUID, id int64) (*resumes.Analysis, error)
	List(ctx context.Context, owner uuid.UUID) ([]resumes.Resume, error)
	Get(ctx context.Context, owner uuid.UUID, id int64) (*resumes.Resume, error)
	EnhancedDownload(ctx context.Context, owner uuid.UUID, id int64) (*resumes.EnhancedFile, error)
	OriginalFileURL(ctx context.Context, owner uuid.UUID, id int64) (string, error)
}

type ProfileService interface {
	GetOrCreate(ctx context.Context, owner uuid.UUID, email string) (*profiles.Profile, error)
	Update(ctx context.Context, owner uuid.UUID, in profiles.UpdateInput) (*profiles.Profile, error)
}

type AuthService interface {
	SignUp(ctx context.Context, email, password, name string) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.Session, error)
}

type Deps struct {
	Resumes  ResumeService
	Profiles ProfileService
	Auth     AuthService
	Tokens   *auth.Tokens
	Log      *logrus.Logger
	// RateLimit guards the mutating resume routes. Nil disables it.
	RateLimit gin.HandlerFunc
}

type Server struct {
	resumes  ResumeService
	profiles ProfileService
	auth     AuthService
	log      *logrus.Logger
}

func NewRouter(d Deps) *gin.Engine {
	s := &Server{
		resumes:  d.Resumes,
		profiles: d.Profiles,
		auth:     d.Auth,
		log:      d.Log,
	}

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery(), RequestLogger(d.Log), metrics.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/signup", s.handlerSignUp)
		authGroup.POST("/login", s.handlerLogin)
		authGroup.POST("/refresh", s.handlerRefresh)
		authGroup.GET("/me", auth.Middleware(d.Tokens), s.handlerMe)
	}

	protected := api.Group("")
	protected.Use(auth.Middleware(d.Tokens))
	{
		protected.GET("/profile", s.handlerGetProfile)
		protected.PUT("/profile", s.handlerUpdateProfile)

		mutating := []gin.HandlerFunc{}
		if d.RateLimit != nil {
			mutating = append(mutating, d.RateLimit)
		}
		protected.POST("/upload-resume", append(mutating, s.handlerUploadResume)...)
		protected.POST("/analyze-resume", append(mutating, s.handlerAnalyzeResume)...)

		protected.GET("/download-enhanced-resume/:id", s.handlerDownloadEnhanced)
		protected.GET("/resumes", s.handlerListResumes)
		protected.GET("/resumes/export", s.handlerExportResumes)
		protected.GET("/resumes/:id", s.handlerGetResume)
		protected.GET("/resumes/:id/file", s.handlerResumeFile)
	}

	return r
}
