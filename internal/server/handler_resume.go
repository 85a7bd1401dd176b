package server

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/muhammadolammi/resumereview/internal/apperr"
	"github.com/muhammadolammi/resumereview/internal/auth"
	"github.com/muhammadolammi/resumereview/internal/document"
	"github.com/muhammadolammi/resumereview/internal/export"
	"github.com/muhammadolammi/resumereview/internal/resumes"
)

const (
	msgUploaded = "Resume uploaded successfully"
	msgAnalyzed = "Analysis completed successfully"
	msgIDNeeded = "Resume ID is required"
)

func (s *Server) handlerUploadResume(c *gin.Context) {
	id, _ := auth.FromGin(c)
	in := resumes.UploadInput{JobDescription: c.PostForm("jobDescription")}

	fh, err := c.FormFile("file")
	if err == nil {
		in.FileName = fh.Filename
		in.ContentType = partType(fh)
		in.Size = fh.Size
		// Oversized or disallowed files are rejected by the service without
		// their bytes.
		if fh.Size <= resumes.MaxFileSize && document.Allowed(in.ContentType) {
			data, err := readPart(fh)
			if err != nil {
				s.respondError(c, apperr.Validation("No file provided"))
				return
			}
			in.Data = data
		}
	}

	r, err := s.resumes.Upload(c.Request.Context(), id.ID, in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgUploaded, "resume": r})
}

func (s *Server) handlerAnalyzeResume(c *gin.Context) {
	id, _ := auth.FromGin(c)
	var body struct {
		ResumeID int64 `json:"resume_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ResumeID <= 0 {
		s.respondError(c, apperr.Validation(msgIDNeeded))
		return
	}

	res, err := s.resumes.Analyze(c.Request.Context(), id.ID, body.ResumeID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   msgAnalyzed,
		"analysis":  res.Output,
		"resume_id": body.ResumeID,
	})
}

func (s *Server) handlerDownloadEnhanced(c *gin.Context) {
	id, _ := auth.FromGin(c)
	resumeID, ok := s.resumeID(c)
	if !ok {
		return
	}
	f, err := s.resumes.EnhancedDownload(c.Request.Context(), id.ID, resumeID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.FileName))
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/plain", []byte(f.Text))
}

func (s *Server) handlerListResumes(c *gin.Context) {
	id, _ := auth.FromGin(c)
	list, err := s.resumes.List(c.Request.Context(), id.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resumes": list})
}

func (s *Server) handlerGetResume(c *gin.Context) {
	id, _ := auth.FromGin(c)
	resumeID, ok := s.resumeID(c)
	if !ok {
		return
	}
	r, err := s.resumes.Get(c.Request.Context(), id.ID, resumeID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resume": r})
}

func (s *Server) handlerResumeFile(c *gin.Context) {
	id, _ := auth.FromGin(c)
	resumeID, ok := s.resumeID(c)
	if !ok {
		return
	}
	url, err := s.resumes.OriginalFileURL(c.Request.Context(), id.ID, resumeID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (s *Server) handlerExportResumes(c *gin.Context) {
	id, _ := auth.FromGin(c)
	list, err := s.resumes.List(c.Request.Context(), id.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	now := time.Now().UTC()
	var buf bytes.Buffer
	if err := export.WriteReport(&buf, list, now); err != nil {
		s.respondError(c, apperr.Internal(msgInternal, fmt.Errorf("write report: %w", err)))
		return
	}
	name := fmt.Sprintf("resume-analyses-%s.xlsx", now.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// resumeID parses the :id path parameter. Unparseable ids cannot name any
// record, so they render as not found.
func (s *Server) resumeID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	if raw == "" {
		s.respondError(c, apperr.Validation(msgIDNeeded))
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.respondError(c, apperr.NotFound("Resume not found"))
		return 0, false
	}
	return id, true
}

func partType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, resumes.MaxFileSize+1))
}
