package sitecontent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/beobgrp/sitecontent/pkg/sitecontent/events"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breaker around an EventStore.
type BreakerSettings struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// the breaker opens once MinRequests calls were made in an interval and
	// at least FailureThreshold of them failed
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerSettings returns the settings used for the event store.
func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// breakerEventStore fails fast while the wrapped store keeps failing, so a
// slow or dead event database does not hold up every page read.
type breakerEventStore struct {
	next EventStore
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerEventStore wraps next in a circuit breaker. Not-found results
// and cancelled contexts do not count as failures.
func NewBreakerEventStore(next EventStore, settings BreakerSettings, logger *slog.Logger) EventStore {
	if logger == nil {
		logger = slog.Default()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrEventNotFound) ||
				errors.Is(err, context.Canceled)
		},
	})
	return &breakerEventStore{next: next, cb: cb}
}

func (b *breakerEventStore) CreateEvent(ctx context.Context, event *events.Event) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.CreateEvent(ctx, event)
	})
	return err
}

func (b *breakerEventStore) GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.GetEvent(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return res.(*events.Event), nil
}

func (b *breakerEventStore) QueryEvents(ctx context.Context, q EventQuery) ([]*events.Event, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.QueryEvents(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return res.([]*events.Event), nil
}
