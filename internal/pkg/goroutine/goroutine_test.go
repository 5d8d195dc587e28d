package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestManager(t *testing.T) {
	t.Run("RunsTasksAndCollectsErrors", func(t *testing.T) {
		// Arrange
		m := NewManager(4)
		var ran atomic.Int32
		boom := errors.New("boom")

		// Act
		m.Go(context.Background(), "ok", func(context.Context) error {
			ran.Add(1)
			return nil
		})
		m.Go(context.Background(), "fail", func(context.Context) error {
			ran.Add(1)
			return boom
		})
		err := m.Wait()

		// Assert
		if ran.Load() != 2 {
			t.Fatalf("expected 2 tasks to run, got %d", ran.Load())
		}
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom in joined errors, got %v", err)
		}
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		// Arrange
		m := NewManager(1)

		// Act
		m.Go(context.Background(), "panic", func(context.Context) error {
			panic("unexpected")
		})

		// Assert
		if err := m.Wait(); err != nil {
			t.Fatalf("expected no error after recovered panic, got %v", err)
		}
	})

	t.Run("SkipsAfterWait", func(t *testing.T) {
		// Arrange
		m := NewManager(1)
		_ = m.Wait()
		var ran atomic.Bool

		// Act
		accepted := m.Go(context.Background(), "late", func(context.Context) error {
			ran.Store(true)
			return nil
		})

		// Assert
		if accepted || ran.Load() {
			t.Fatal("expected task to be skipped once closed")
		}
	})

	t.Run("CanceledContextSkipsTask", func(t *testing.T) {
		// Arrange
		m := NewManager(1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var ran atomic.Bool

		// Act
		m.Go(ctx, "canceled", func(context.Context) error {
			ran.Store(true)
			return nil
		})
		_ = m.Wait()

		// Assert
		if ran.Load() {
			t.Fatal("expected canceled task not to run")
		}
	})

	t.Run("LimitReached", func(t *testing.T) {
		// Arrange
		m := NewManager(1)
		release := make(chan struct{})
		started := make(chan struct{})
		m.Go(context.Background(), "blocker", func(context.Context) error {
			close(started)
			<-release
			return nil
		})
		<-started

		// Act
		accepted := m.Go(context.Background(), "dropped", func(context.Context) error { return nil })
		close(release)
		err := m.Wait()

		// Assert
		if accepted {
			t.Fatal("expected the task to be refused at the limit")
		}
		if !errors.Is(err, ErrLimitReached) {
			t.Fatalf("expected ErrLimitReached, got %v", err)
		}
	})
}

func TestManager_Nil(t *testing.T) {
	var m *Manager
	if m.Go(context.Background(), "noop", func(context.Context) error { return nil }) {
		t.Fatal("expected a nil manager to refuse tasks")
	}
	if err := m.Wait(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
