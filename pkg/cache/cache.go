package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service is a JSON value cache. Implementations serialize on Set and
// unmarshal into dest on Get, so every backend behaves the same way.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// Noop never stores anything; every Get is a miss.
type Noop struct{}

func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) Get(context.Context, string, interface{}) error { return ErrCacheMiss }
func (Noop) Delete(context.Context, ...string) error { return nil }
func (Noop) Exists(context.Context, string) (bool, error) { return false, nil }
func (Noop) Close() error { return nil }
