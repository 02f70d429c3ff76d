package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// Service is a JSON cache-aside store
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error

	// GetOrSet fills dest from the cache, or from fetcher on a miss and stores the result
	GetOrSet(ctx context.Context, key string, ttl time.Duration, dest interface{}, fetcher func() (interface{}, error)) error

	Ping(ctx context.Context) error
}

// Noop returns a Service that never stores anything. Used when Redis is not configured.
func Noop() Service {
	return noop{}
}

type noop struct{}

func (noop) Get(context.Context, string, interface{}) error                 { return ErrCacheMiss }
func (noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (noop) Delete(context.Context, ...string) error                       { return nil }
func (noop) DeletePattern(context.Context, string) error                   { return nil }
func (noop) Ping(context.Context) error                                    { return nil }

func (noop) GetOrSet(_ context.Context, _ string, _ time.Duration, dest interface{}, fetcher func() (interface{}, error)) error {
	data, err := fetcher()
	if err != nil {
		return err
	}
	return copyInto(data, dest)
}
