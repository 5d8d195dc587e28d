package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"go.uber.org/atomic"
)

// File appends one JSON object per line. Each record is a single Write on a
// file opened with O_APPEND, so concurrent writers never interleave lines.
type File struct {
	mu      sync.Mutex
	f       *os.File
	path    string
	closed  *atomic.Bool
	written *atomic.Int64
}

func NewFile(path string) (*File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create audit dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}

	return &File{
		f:       f,
		path:    path,
		closed:  atomic.NewBool(false),
		written: atomic.NewInt64(0),
	}, nil
}

func (s *File) Record(_ context.Context, ev entity.AuditEvent) error {
	if s.closed.Load() {
		return ErrClosed
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.f.Write(line); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	s.written.Inc()

	return nil
}

// Written reports how many records this sink appended.
func (s *File) Written() int64 {
	return s.written.Load()
}

func (s *File) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.f.Sync(); err != nil {
		_ = s.f.Close()
		return err
	}
	if err := s.f.Close(); err != nil {
		return err
	}

	slog.Info("audit file closed", "path", s.path, "records", s.Written())
	return nil
}
