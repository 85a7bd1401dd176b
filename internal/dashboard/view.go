// Package dashboard is the client-side view of a user's resumes.
//
// The view caches one entry per resume. Every mutating call invalidates the
// entry it touches before applying the server's answer, so a failed call never
// leaves an optimistic state behind.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/muhammadolammi/resumereview/internal/analysis"
	"github.com/muhammadolammi/resumereview/internal/resumes"
)

const kindConflict = "conflict"

type API interface {
	List(ctx context.Context) ([]resumes.Resume, error)
	Get(ctx context.Context, id int64) (*resumes.Resume, error)
	Upload(ctx context.Context, f UploadFile) (*resumes.Resume, error)
	Analyze(ctx context.Context, id int64) (*analysis.Output, error)
}

type Entry struct {
	Resume   resumes.Resume
	Analysis *analysis.Output
	// Stale entries are refetched on the next read.
	Stale bool
}

type View struct {
	api API

	mu      sync.Mutex
	entries map[int64]*Entry
	order   []int64
}

func NewView(api API) *View {
	return &View{api: api, entries: make(map[int64]*Entry)}
}

// Load replaces the cache with the server's list, newest first.
func (v *View) Load(ctx context.Context) ([]Entry, error) {
	list, err := v.api.List(ctx)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = make(map[int64]*Entry, len(list))
	v.order = v.order[:0]
	for _, r := range list {
		v.entries[r.ID] = newEntry(r)
		v.order = append(v.order, r.ID)
	}
	return v.snapshot(), nil
}

// Entries returns the cached entries without touching the server.
func (v *View) Entries() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot()
}

func (v *View) Upload(ctx context.Context, f UploadFile) (*Entry, error) {
	r, err := v.api.Upload(ctx, f)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	e := newEntry(*r)
	if _, ok := v.entries[r.ID]; !ok {
		v.order = append([]int64{r.ID}, v.order...)
	}
	v.entries[r.ID] = e
	out := *e
	return &out, nil
}

// Analyze shows the entry as analyzing while the call is in flight. A conflict
// means the server left the record alone, so the entry takes the reported
// status instead of being reverted.
func (v *View) Analyze(ctx context.Context, id int64) (*Entry, error) {
	v.mu.Lock()
	var prev Entry
	e, had := v.entries[id]
	if had {
		prev = *e
		e.Resume.Status = resumes.StatusAnalyzing
		e.Analysis = nil
		e.Stale = false
	}
	v.mu.Unlock()

	out, err := v.api.Analyze(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	e, ok := v.entries[id]
	if err != nil {
		if !ok {
			return nil, err
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Kind == kindConflict && apiErr.Status != "" {
			if had {
				*e = prev
			}
			if e.Resume.Status != apiErr.Status {
				e.Resume.Status = apiErr.Status
				e.Stale = true
			}
			return nil, err
		}
		e.Resume.Status = resumes.StatusUploaded
		e.Stale = true
		return nil, err
	}

	if !ok {
		e = &Entry{Resume: resumes.Resume{ID: id}}
		v.entries[id] = e
		v.order = append([]int64{id}, v.order...)
	}
	e.Resume.Status = resumes.StatusAnalyzed
	e.Analysis = out
	// analyzed_at, the stored payload and the enhanced text only come with
	// the record itself.
	e.Stale = true
	res := *e
	return &res, nil
}

// Resume returns one entry, refetching it when stale or missing.
func (v *View) Resume(ctx context.Context, id int64) (*Entry, error) {
	v.mu.Lock()
	if e, ok := v.entries[id]; ok && !e.Stale {
		out := *e
		v.mu.Unlock()
		return &out, nil
	}
	v.mu.Unlock()

	r, err := v.api.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	e := newEntry(*r)
	old, ok := v.entries[id]
	if !ok {
		v.order = append(v.order, id)
	}
	// The stored payload need not have the output shape; keep the output
	// returned by Analyze in that case.
	if ok && e.Analysis == nil && old.Analysis != nil && e.Resume.Status == resumes.StatusAnalyzed {
		e.Analysis = old.Analysis
	}
	v.entries[id] = e
	out := *e
	return &out, nil
}

func (v *View) snapshot() []Entry {
	out := make([]Entry, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, *v.entries[id])
	}
	return out
}

func newEntry(r resumes.Resume) *Entry {
	e := &Entry{Resume: r}
	if r.Status != resumes.StatusAnalyzed || len(r.AnalysisResult) == 0 {
		return e
	}
	var out analysis.Output
	if err := json.Unmarshal(r.AnalysisResult, &out); err == nil && out.Validate() == nil {
		e.Analysis = &out
	}
	return e
}
