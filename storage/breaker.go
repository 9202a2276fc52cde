package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		FailureRatio: 0.6,
	}
}

// breakerStore stops calling a failing object store for a while instead of
// holding every export on a dead endpoint.
type breakerStore struct {
	next ObjectStore
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerStore(next ObjectStore, settings BreakerSettings, logger *slog.Logger) ObjectStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "object-store",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= settings.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrObjectNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("object store circuit breaker state changed",
				slog.String("name", name), slog.String("from", from.String()), slog.String("to", to.String()))
		},
	})
	return &breakerStore{next: next, cb: cb}
}

func (b *breakerStore) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Upload(ctx, key, contentType, reader)
	})
	if err != nil {
		return nil, err
	}
	return res.(*UploadResult), nil
}

func (b *breakerStore) Download(ctx context.Context, key string) ([]byte, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Download(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

func (b *breakerStore) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return err
}

func (b *breakerStore) GetPublicURL(key string) string {
	return b.next.GetPublicURL(key)
}
