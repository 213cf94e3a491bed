package llm

import (
	"context"
	"time"

	"github.com/quaysidelabs/quayside-agent/internal/domain"
)

// timeoutClient bounds every Complete call with its own deadline, on
// top of whatever run-level deadline the caller carries.
type timeoutClient struct {
	inner   domain.LLMClient
	timeout time.Duration
}

// WithTimeout wraps a client so each model call gets a per-call
// deadline. A zero or negative timeout returns the client unchanged.
func WithTimeout(inner domain.LLMClient, timeout time.Duration) domain.LLMClient {
	if timeout <= 0 {
		return inner
	}
	return &timeoutClient{inner: inner, timeout: timeout}
}

func (c *timeoutClient) Complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.inner.Complete(callCtx, prompt)
}
