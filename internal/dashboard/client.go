package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/muhammadolammi/resumereview/internal/analysis"
	"github.com/muhammadolammi/resumereview/internal/resumes"
)

// APIError is an error body returned by the resume API.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %d %s: %s", e.StatusCode, e.Kind, e.Message)
}

// Client talks to the resume HTTP API as one signed-in user.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   accessToken,
		// Analysis calls wait for the worker.
		http: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *Client) List(ctx context.Context) ([]resumes.Resume, error) {
	var out struct {
		Resumes []resumes.Resume `json:"resumes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/resumes", nil, "", &out); err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return out.Resumes, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*resumes.Resume, error) {
	var out struct {
		Resume resumes.Resume `json:"resume"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/resumes/%d", id), nil, "", &out); err != nil {
		return nil, fmt.Errorf("get resume %d: %w", id, err)
	}
	return &out.Resume, nil
}

// UploadFile is a file picked by the user.
type UploadFile struct {
	FileName       string
	ContentType    string
	Data           []byte
	JobDescription string
}

func (c *Client) Upload(ctx context.Context, f UploadFile) (*resumes.Resume, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.FileName))
	h.Set("Content-Type", f.ContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, err
	}
	if err := mw.WriteField("jobDescription", f.JobDescription); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out struct {
		Resume resumes.Resume `json:"resume"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/upload-resume", &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, fmt.Errorf("upload resume: %w", err)
	}
	return &out.Resume, nil
}

func (c *Client) Analyze(ctx context.Context, id int64) (*analysis.Output, error) {
	body, err := json.Marshal(map[string]int64{"resume_id": id})
	if err != nil {
		return nil, err
	}
	var out struct {
		Analysis analysis.Output `json:"analysis"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/analyze-resume", bytes.NewReader(body), "application/json", &out); err != nil {
		return nil, fmt.Errorf("analyze resume %d: %w", id, err)
	}
	return &out.Analysis, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if json.Unmarshal(b, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(b))
		}
		return apiErr
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
