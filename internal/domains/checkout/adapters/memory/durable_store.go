package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

var _ ports.DurableStore = (*DurableStore)(nil)

type durableRecord struct {
	draftID      string
	payment      *ports.PaymentRecord
	cleanupAfter time.Time
}

// DurableStore is an in-memory durable-record adapter. Absent records come
// back as zero values, never as errors.
type DurableStore struct {
	mu      sync.RWMutex
	records map[string]*durableRecord
}

func NewDurableStore() *DurableStore {
	return &DurableStore{records: map[string]*durableRecord{}}
}

func (s *DurableStore) record(sessionID string) *durableRecord {
	record, ok := s.records[sessionID]
	if !ok {
		record = &durableRecord{}
		s.records[sessionID] = record
	}
	return record
}

func (s *DurableStore) DraftID(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[sessionID]
	if !ok {
		return "", nil
	}
	return record.draftID, nil
}

func (s *DurableStore) SaveDraftID(_ context.Context, sessionID, draftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(sessionID).draftID = draftID
	return nil
}

func (s *DurableStore) LastPayment(_ context.Context, sessionID string) (*ports.PaymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[sessionID]
	if !ok || record.payment == nil {
		return nil, nil
	}
	clone := *record.payment
	return &clone, nil
}

func (s *DurableStore) SavePayment(_ context.Context, sessionID string, payment ports.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(sessionID).payment = &payment
	return nil
}

func (s *DurableStore) ClearPayment(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[sessionID]; ok {
		record.payment = nil
	}
	return nil
}

func (s *DurableStore) CleanupAfter(_ context.Context, sessionID string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[sessionID]
	if !ok {
		return time.Time{}, nil
	}
	return record.cleanupAfter, nil
}

func (s *DurableStore) StampCleanupAfter(_ context.Context, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(sessionID).cleanupAfter = at
	return nil
}

func (s *DurableStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}

func (s *DurableStore) ListExpired(_ context.Context, now time.Time) ([]ports.DraftRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var refs []ports.DraftRef
	for sessionID, record := range s.records {
		if record.cleanupAfter.IsZero() || now.Before(record.cleanupAfter) {
			continue
		}
		refs = append(refs, ports.DraftRef{SessionID: sessionID, DraftID: record.draftID})
	}
	return refs, nil
}
