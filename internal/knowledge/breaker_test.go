package knowledge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sherpa/internal/config"
)

type scriptedRetriever struct {
	answer Answer
	err    error
	calls  int
}

func (r *scriptedRetriever) Retrieve(ctx context.Context, query string) (Answer, error) {
	r.calls++
	if r.err != nil {
		return Answer{}, r.err
	}
	return r.answer, nil
}

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	}
}

func TestBreakerRetriever_PassesThrough(t *testing.T) {
	inner := &scriptedRetriever{answer: Answer{Text: "answer", Sources: []string{"doc.md"}}}
	retriever := NewBreakerRetriever(inner, breakerConfig())

	answer, err := retriever.Retrieve(context.Background(), "query")

	require.NoError(t, err)
	assert.Equal(t, "answer", answer.Text)
	assert.Equal(t, []string{"doc.md"}, answer.Sources)
}

func TestBreakerRetriever_OpensAfterRepeatedFailures(t *testing.T) {
	inner := &scriptedRetriever{err: errors.New("backend down")}
	retriever := NewBreakerRetriever(inner, breakerConfig())

	for i := 0; i < 5; i++ {
		_, err := retriever.Retrieve(context.Background(), "query")
		require.Error(t, err)
	}

	// Once open, calls fail fast without reaching the backend.
	assert.Less(t, inner.calls, 5)
}

func TestBreakerRetriever_ContextCanceled(t *testing.T) {
	inner := &scriptedRetriever{answer: Answer{Text: "answer"}}
	retriever := NewBreakerRetriever(inner, breakerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := retriever.Retrieve(ctx, "query")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, inner.calls)
}
