package knowledge

import (
	"context"

	"github.com/sony/gobreaker"

	"sherpa/internal/config"
	"sherpa/pkg/circuitbreaker"
)

// BreakerRetriever wraps a Retriever with a circuit breaker so a failing
// backend stops being hammered. Open-circuit errors propagate like any other
// retrieval error; the caller's fallback policy applies.
type BreakerRetriever struct {
	inner   Retriever
	breaker *circuitbreaker.Wrapper
}

func NewBreakerRetriever(inner Retriever, cfg config.CircuitBreakerConfig) *BreakerRetriever {
	breakerCfg := circuitbreaker.DefaultConfig("knowledge")

	if cfg.MaxRequests > 0 {
		breakerCfg.MaxRequests = cfg.MaxRequests
	}
	if cfg.Interval > 0 {
		breakerCfg.Interval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		breakerCfg.Timeout = cfg.Timeout
	}
	if cfg.FailureRatio > 0 {
		minRequests := cfg.MinRequests
		if minRequests == 0 {
			minRequests = 3
		}
		breakerCfg.ReadyToTrip = func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= cfg.FailureRatio
		}
	}

	return &BreakerRetriever{
		inner:   inner,
		breaker: circuitbreaker.NewWrapper(breakerCfg),
	}
}

func (r *BreakerRetriever) Retrieve(ctx context.Context, query string) (Answer, error) {
	result, err := r.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		return r.inner.Retrieve(ctx, query)
	})
	r.breaker.RecordRequest(err == nil)
	if err != nil {
		return Answer{}, err
	}
	return result.(Answer), nil
}
