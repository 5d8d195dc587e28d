package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/riskguard/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is multiplied by NumCPU when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrLimitReached is recorded when a task is dropped because every slot is busy.
var ErrLimitReached = errors.New("goroutine: maximum concurrent tasks reached")

// Manager runs background tasks (OTP delivery, audit writes) with a bounded
// number of concurrent goroutines.
//
// Task errors are logged with the task name and collected for Wait.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{
		sema: make(chan struct{}, maxGoroutine),
	}
}

// Go schedules f in a goroutine if capacity is available and reports whether
// it did.
//
// The task is skipped, and a warning logged, when the manager is closed or at
// its concurrency limit. Callers that need the task to outlive a request pass a
// context detached from the request (context.WithoutCancel).
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.stateMu.RLock()
	if g.closed {
		g.stateMu.RUnlock()
		slog.WarnContext(ctx, "goroutine manager is closed, skipping task", "task", name)
		return false
	}

	select {
	case g.sema <- struct{}{}:
		g.wg.Go(func() {
			g.stateMu.RUnlock()
			defer func() {
				<-g.sema

				if rvr := recover(); rvr != nil {
					stack := debug.Stack()
					if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
						slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", paths)
					} else {
						slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "because", rvr, "stack", string(stack))
					}
				}
			}()

			if err := ctx.Err(); err != nil {
				slog.WarnContext(ctx, "goroutine canceled", "task", name, "because", err)
				return
			}

			if err := f(ctx); err != nil {
				slog.ErrorContext(ctx, "goroutine task failed", "task", name, "error", err)
				g.record(err)
			}
		})
		return true

	default:
		g.stateMu.RUnlock()
		slog.WarnContext(ctx, "maximum goroutine limit reached, skipping task", "task", name)
		g.record(ErrLimitReached)
		return false
	}
}

func (g *Manager) record(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// Wait stops accepting tasks, blocks until running ones finish and returns
// the collected errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
