package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/resumereview/internal/document"
	"github.com/muhammadolammi/resumereview/internal/retry"
	"github.com/sirupsen/logrus"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

const agentName = "resume analyzer"

// FileSource reads stored resume files.
type FileSource interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// GeminiAnalyzer runs the analysis in process with a Gemini agent over the
// text extracted from the stored file.
type GeminiAnalyzer struct {
	files    FileSource
	runner   *runner.Runner
	sessions session.Service
	appName  string
	timeout  time.Duration
	log      *logrus.Logger
}

func NewGeminiAnalyzer(ctx context.Context, apiKey, modelName string, files FileSource, timeout time.Duration, log *logrus.Logger) (*GeminiAnalyzer, error) {
	model, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %v", err)
	}

	analyzer, err := llmagent.New(llmagent.Config{
		Name:        agentName,
		Model:       model,
		Description: "Analyze Resume",
		Instruction: prompt(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %v", err)
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        analyzer.Name(),
		Agent:          analyzer,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %v", err)
	}

	return &GeminiAnalyzer{
		files:    files,
		runner:   r,
		sessions: sessions,
		appName:  analyzer.Name(),
		timeout:  timeout,
		log:      log,
	}, nil
}

func (g *GeminiAnalyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	fileBytes, err := retry.Do(ctx, retry.Config{Attempts: 3, Wait: 500 * time.Millisecond}, func() ([]byte, error) {
		return g.files.Get(ctx, req.StoragePath)
	})
	if err != nil {
		return nil, fmt.Errorf("file download error: %w", err)
	}

	resumeText, err := document.ExtractText(req.FileType, fileBytes)
	if err != nil {
		return nil, fmt.Errorf("text extraction error: %w", err)
	}

	agentSession, err := g.sessions.Create(ctx, &session.CreateRequest{
		AppName:   g.appName,
		UserID:    req.UserID,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent session: %w", err)
	}
	defer func() {
		err := g.sessions.Delete(context.Background(), &session.DeleteRequest{
			AppName:   agentSession.Session.AppName(),
			UserID:    agentSession.Session.UserID(),
			SessionID: agentSession.Session.ID(),
		})
		if err != nil {
			g.log.WithError(err).WithField("resume_id", req.ResumeID).Warn("failed to delete agent session")
		}
	}()

	msg := fmt.Sprintf(
		"Job Description:\n%s\n\nResume:\n%s",
		req.JobDescription,
		resumeText,
	)

	finalOutput, err := retry.Do(ctx, retry.Config{Attempts: 2, Wait: 500 * time.Millisecond}, func() (string, error) {
		stream := g.runner.Run(ctx, agentSession.Session.UserID(), agentSession.Session.ID(), &genai.Content{
			Role: "user",
			Parts: []*genai.Part{
				{Text: msg},
			},
		}, agent.RunConfig{})

		var output string
		for event, err := range stream {
			if err != nil {
				return "", err
			}
			if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
				output = event.Content.Parts[0].Text
			}
		}
		if output == "" {
			return "", errors.New("empty agent response")
		}
		return output, nil
	})
	if err != nil {
		return nil, fmt.Errorf("agent stream error: %w", err)
	}

	return parseAgentOutput(finalOutput)
}

// parseAgentOutput turns the agent's reply, which is the bare output object,
// into a Result.
func parseAgentOutput(text string) (*Result, error) {
	cleaned := extractJSON(text)
	if strings.TrimSpace(cleaned) == "" {
		return nil, fmt.Errorf("%w: empty response from agent", ErrMalformed)
	}
	out, err := parseOutput([]byte(cleaned))
	if err != nil {
		return nil, err
	}
	return &Result{Output: out, Analysis: []byte(cleaned)}, nil
}
