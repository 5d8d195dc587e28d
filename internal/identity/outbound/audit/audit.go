// Package audit holds the non-database audit sinks: a JSON Lines file, a
// structured log line and a fanout over several sinks.
package audit

import (
	"context"
	"errors"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
)

// ErrClosed is returned by a sink used after Close.
var ErrClosed = errors.New("audit: sink is closed")

// Sink records one audit event.
type Sink interface {
	Record(ctx context.Context, ev entity.AuditEvent) error
}

// Fanout records every event to each sink in order and joins their errors.
type Fanout []Sink

func (f Fanout) Record(ctx context.Context, ev entity.AuditEvent) error {
	var errs []error
	for _, s := range f {
		if err := s.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
