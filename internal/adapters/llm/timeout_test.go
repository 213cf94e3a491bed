package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeoutBoundsTheCall(t *testing.T) {
	blocking := NewMockLLM()
	blocking.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	client := WithTimeout(blocking, 20*time.Millisecond)

	start := time.Now()
	_, err := client.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWithTimeoutPassesThroughOnSuccess(t *testing.T) {
	client := WithTimeout(NewMockLLM(), time.Second)

	got, err := client.Complete(context.Background(), "anything")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestWithTimeoutZeroIsIdentity(t *testing.T) {
	inner := NewMockLLM()
	assert.Same(t, inner, WithTimeout(inner, 0))
}
