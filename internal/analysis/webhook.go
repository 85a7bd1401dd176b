package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/muhammadolammi/resumereview/internal/retry"
)

const maxResponseBytes = 10 << 20

// StatusError is a non-2xx answer from the worker.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analysis webhook returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// WebhookClient posts analysis requests to an HTTP workflow endpoint.
type WebhookClient struct {
	url         string
	httpClient  *http.Client
	timeout     time.Duration
	maxAttempts int
	retryWait   time.Duration
}

// RetryWait is the base wait between webhook attempts; the n-th wait is n*RetryWait.
const RetryWait = time.Second

// WebhookBudget is the longest a webhook analysis can run: every attempt
// timing out plus the waits between them.
func WebhookBudget(timeout time.Duration, maxAttempts int) time.Duration {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	waits := RetryWait * time.Duration(maxAttempts*(maxAttempts-1)/2)
	return timeout*time.Duration(maxAttempts) + waits
}

func NewWebhookClient(url string, timeout time.Duration, maxAttempts int) *WebhookClient {
	return &WebhookClient{
		url:         url,
		httpClient:  &http.Client{},
		timeout:     timeout,
		maxAttempts: maxAttempts,
		retryWait:   RetryWait,
	}
}

// Analyze blocks until the worker answers. Each attempt is bounded by the
// client timeout; only failures where the worker cannot have started the job
// are attempted again.
func (c *WebhookClient) Analyze(ctx context.Context, req Request) (*Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis request: %w", err)
	}

	body, err := retry.Do(ctx, retry.Config{
		Attempts:    c.maxAttempts,
		Wait:        c.retryWait,
		ShouldRetry: retryable,
	}, func() ([]byte, error) {
		return c.post(ctx, payload)
	})
	if err != nil {
		return nil, err
	}
	return ParseResult(body)
}

func (c *WebhookClient) post(ctx context.Context, payload []byte) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}
	return body, nil
}

// retryable is true only when the worker did not accept the job: the
// connection was never made, or it answered with a throttling or gateway status.
func retryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
