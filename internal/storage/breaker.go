package storage

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/qualgraph/qualgraph/pkg/types"
)

// ErrCircuitOpen is returned when the breaker is open and rejects calls
// without touching the backing store.
var ErrCircuitOpen = errors.New("storage circuit breaker is open")

// BreakerConfig holds the configuration for BreakerStore.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures required to trip
	// the circuit. Default: 3.
	MaxFailures uint32

	// Timeout is how long the circuit stays open before allowing a probe
	// call. Default: 30 seconds.
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of consecutive successes in
	// half-open state required to close the circuit. Default: 2.
	HalfOpenMaxSuccesses uint32
}

// BreakerStore wraps a GraphStore with a circuit breaker so that a
// persistently failing backend fails fast instead of hammering the disk or
// database on every call. It never retries: a single failed Load or Save
// still surfaces immediately, exactly as without the wrapper.
type BreakerStore struct {
	inner   GraphStore
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps inner with default breaker settings.
func NewBreakerStore(inner GraphStore) *BreakerStore {
	return NewBreakerStoreWithConfig(inner, BreakerConfig{
		MaxFailures:          3,
		Timeout:              30 * time.Second,
		HalfOpenMaxSuccesses: 2,
	})
}

// NewBreakerStoreWithConfig wraps inner with custom breaker settings.
func NewBreakerStoreWithConfig(inner GraphStore, config BreakerConfig) *BreakerStore {
	settings := gobreaker.Settings{
		Name:        "GraphStoreBreaker",
		MaxRequests: config.HalfOpenMaxSuccesses,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
	}
	return &BreakerStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Load delegates to the inner store through the breaker.
func (s *BreakerStore) Load(ctx context.Context) (*types.KnowledgeGraph, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.Load(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	return result.(*types.KnowledgeGraph), nil
}

// Save delegates to the inner store through the breaker.
func (s *BreakerStore) Save(ctx context.Context, graph *types.KnowledgeGraph) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.inner.Save(ctx, graph)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}

// Close closes the inner store.
func (s *BreakerStore) Close() error {
	return s.inner.Close()
}

// State returns the breaker state as a string: closed, open, or half-open.
func (s *BreakerStore) State() string {
	switch s.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
