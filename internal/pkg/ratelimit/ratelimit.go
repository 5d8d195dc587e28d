// Package ratelimit counts attempts per key in fixed windows stored in redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnexpectedReply is returned when the window script answers with an unknown shape.
var ErrUnexpectedReply = errors.New("ratelimit: unexpected redis reply")

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether another attempt for key is permitted.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}

// windowScript increments the counter and starts the window on the first hit.
var windowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

type Option func(*FixedWindow)

// WithPrefix overrides the default "ratelimit:" key prefix.
func WithPrefix(prefix string) Option {
	return func(f *FixedWindow) {
		f.prefix = prefix
	}
}

// FixedWindow allows at most limit attempts per key within each window.
type FixedWindow struct {
	client redis.Cmdable
	prefix string
	limit  int
	window time.Duration
}

const (
	defaultLimit  = 5
	defaultWindow = 5 * time.Minute
)

// NewFixedWindow builds a FixedWindow limiter. Non-positive limit or window
// fall back to 5 attempts per 5 minutes.
func NewFixedWindow(client redis.Cmdable, limit int, window time.Duration, opts ...Option) *FixedWindow {
	if limit <= 0 {
		limit = defaultLimit
	}
	if window <= 0 {
		window = defaultWindow
	}

	f := &FixedWindow{client: client, prefix: "ratelimit:", limit: limit, window: window}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FixedWindow) key(key string) string {
	return f.prefix + key
}

// Allow records one attempt and reports whether it is within the limit.
func (f *FixedWindow) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := windowScript.Run(ctx, f.client, []string{f.key(key)}, f.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit allow: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, ErrUnexpectedReply
	}

	return decide(res[0], res[1], f.limit), nil
}

// Reset clears the counter for key.
func (f *FixedWindow) Reset(ctx context.Context, key string) error {
	return f.client.Del(ctx, f.key(key)).Err()
}

func decide(count, ttlMillis int64, limit int) Decision {
	d := Decision{
		Allowed:   count <= int64(limit),
		Remaining: max(limit-int(count), 0),
	}
	if !d.Allowed && ttlMillis > 0 {
		d.RetryAfter = time.Duration(ttlMillis) * time.Millisecond
	}
	return d
}
