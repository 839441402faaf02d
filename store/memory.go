package store

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is an in-process [Store] for single-node deployments and
// tests. Expired records are dropped lazily on read and can be swept
// explicitly with Purge.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Load returns the payload for id, or (nil, nil) when absent or expired.
func (s *MemoryStore) Load(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	now := s.now()
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !rec.expiresAt.IsZero() && !now.Before(rec.expiresAt) {
		s.mu.Lock()
		delete(s.records, id)
		s.mu.Unlock()
		return nil, nil
	}

	out := make([]byte, len(rec.data))
	copy(out, rec.data)
	return out, nil
}

// Save stores the payload under id. A non-positive ttl keeps the record
// until overwritten or removed.
func (s *MemoryStore) Save(_ context.Context, id string, data []byte, ttl time.Duration) error {
	rec := memoryRecord{data: append([]byte(nil), data...)}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl > 0 {
		rec.expiresAt = s.now().Add(ttl)
	}
	s.records[id] = rec
	return nil
}

// Touch extends the record's lifetime without rewriting the payload.
// Touching an absent id is not an error; a non-positive ttl clears the
// expiry.
func (s *MemoryStore) Touch(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	if ttl > 0 {
		rec.expiresAt = s.now().Add(ttl)
	} else {
		rec.expiresAt = time.Time{}
	}
	s.records[id] = rec
	return nil
}

// Remove deletes the record for id. Removing an absent id is not an error.
func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// Purge drops every expired record and reports how many were removed.
func (s *MemoryStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, rec := range s.records {
		if !rec.expiresAt.IsZero() && !now.Before(rec.expiresAt) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of records currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
