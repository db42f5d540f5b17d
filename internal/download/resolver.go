package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Circuit breaker settings for the resolver endpoint. A flapping resolver
// should fail dispatches fast instead of tying up download workers.
const (
	breakerName             = "resolver"
	breakerMaxHalfOpenCalls = 2
	breakerOpenTimeout      = 45 * time.Second
	breakerFailureThreshold = 5
)

// BreakerProber probes the resolver endpoint through a circuit breaker.
type BreakerProber struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerProber creates a prober with the given per-probe timeout.
func NewBreakerProber(timeout time.Duration) *BreakerProber {
	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: breakerMaxHalfOpenCalls,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
	}
	return &BreakerProber{
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Probe sends a HEAD request to the resolved URL. Transport errors and 5xx
// statuses count as resolver failures; anything else means the endpoint is
// alive (some deployments reject HEAD with 405 but still serve GET).
func (p *BreakerProber) Probe(ctx context.Context, resolvedURL string) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, resolvedURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("endpoint unreachable: %w", err)
		}
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("endpoint returned status %d", resp.StatusCode)
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("endpoint temporarily unavailable: %w", err)
	}
	return err
}
