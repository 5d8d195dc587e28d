// Package memory keeps OTP records in process memory. It backs the "memory"
// store driver and the usecase tests.
package memory

import (
	"context"
	"sync"

	"github.com/shandysiswandi/riskguard/internal/identity/entity"
	"github.com/shandysiswandi/riskguard/internal/pkg/goerror"
)

// OTPStore holds at most one record per principal.
type OTPStore struct {
	mu    sync.Mutex
	slots map[string]entity.OTPRecord
}

func NewOTPStore() *OTPStore {
	return &OTPStore{slots: make(map[string]entity.OTPRecord)}
}

// SupersedeAndInsert replaces whatever the principal's slot held.
func (s *OTPStore) SupersedeAndInsert(_ context.Context, rec entity.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[rec.Principal] = rec
	return nil
}

// GetActive returns the unused record for principal. Expiry is left to the caller.
func (s *OTPStore) GetActive(_ context.Context, principal string) (*entity.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.slots[principal]
	if !ok || rec.Used {
		return nil, goerror.ErrNotFound
	}
	return &rec, nil
}

// MarkUsed flips used on the exact record. A superseded or already-used
// record reports goerror.ErrConflict.
func (s *OTPStore) MarkUsed(_ context.Context, rec entity.OTPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.slots[rec.Principal]
	if !ok || cur.ID != rec.ID || cur.Used {
		return goerror.ErrConflict
	}

	cur.Used = true
	s.slots[rec.Principal] = cur
	return nil
}
