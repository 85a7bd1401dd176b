// Package analysis talks to the worker that scores a resume against a job description.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Request is the payload sent to the analysis worker.
type Request struct {
	ResumeID         int64  `json:"resume_id"`
	UserID           string `json:"user_id"`
	FileURL          string `json:"file_url"`
	JobDescription   string `json:"job_description"`
	OriginalFileName string `json:"original_file_name"`
	FileType         string `json:"file_type"`

	// StoragePath is the object key, for analyzers that read the file themselves.
	StoragePath string `json:"-"`
}

type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

func (l Level) Valid() bool {
	return l == LevelLow || l == LevelMedium || l == LevelHigh
}

type RewardFactor struct {
	Level       Level  `json:"level"`
	Scenario    string `json:"scenario"`
	FitDuration string `json:"fit_duration"`
}

type Output struct {
	CandidateStrengths  []string     `json:"candidate_strengths"`
	CandidateWeaknesses []string     `json:"candidate_weaknesses"`
	RiskFactor          Level        `json:"risk_factor"`
	RewardFactor        RewardFactor `json:"reward_factor"`
	OverallFitRating    float64      `json:"overall_fit_rating"`
	Justification       string       `json:"justification"`
}

func (o Output) Validate() error {
	if !o.RiskFactor.Valid() {
		return fmt.Errorf("%w: risk_factor %q", ErrMalformed, o.RiskFactor)
	}
	if !o.RewardFactor.Level.Valid() {
		return fmt.Errorf("%w: reward_factor.level %q", ErrMalformed, o.RewardFactor.Level)
	}
	if o.OverallFitRating < 0 || o.OverallFitRating > 10 {
		return fmt.Errorf("%w: overall_fit_rating %v out of range", ErrMalformed, o.OverallFitRating)
	}
	return nil
}

// Result is a successful analysis.
type Result struct {
	Output Output
	// Analysis is persisted verbatim.
	Analysis     json.RawMessage
	EnhancedText *string
}

type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}

var ErrMalformed = errors.New("malformed analysis response")

type response struct {
	Output             json.RawMessage `json:"output"`
	Analysis           json.RawMessage `json:"analysis"`
	EnhancedResumeText *string         `json:"enhanced_resume_text"`
}

// ParseResult decodes a worker success body. A body without a valid output
// is malformed; a missing analysis falls back to the raw output.
func ParseResult(body []byte) (*Result, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if isAbsent(resp.Output) {
		return nil, fmt.Errorf("%w: missing output", ErrMalformed)
	}
	out, err := parseOutput(resp.Output)
	if err != nil {
		return nil, err
	}

	result := &Result{Output: out, Analysis: resp.Analysis}
	if isAbsent(resp.Analysis) {
		result.Analysis = resp.Output
	}
	if resp.EnhancedResumeText != nil && *resp.EnhancedResumeText != "" {
		result.EnhancedText = resp.EnhancedResumeText
	}
	return result, nil
}

func parseOutput(raw []byte) (Output, error) {
	var out Output
	if err := json.Unmarshal(raw, &out); err != nil {
		return Output{}, fmt.Errorf("%w: output: %v", ErrMalformed, err)
	}
	if err := out.Validate(); err != nil {
		return Output{}, err
	}
	return out, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
