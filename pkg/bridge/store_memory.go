package bridge

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultOutcomeCapacity = 1024
	DefaultOutcomeTTL      = 5 * time.Minute
)

type memoryEntry struct {
	outcome  ActionOutcome
	storedAt time.Time
}

// MemoryOutcomeStore keeps outcomes in insertion order and evicts from the
// oldest end: first anything older than ttl, then anything beyond capacity.
// Eviction runs on every Put and Get.
type MemoryOutcomeStore struct {
	lock     sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	order    []uint64
	entries  map[uint64]memoryEntry
}

type NewMemoryOutcomeStoreOptions struct {
	Capacity int
	TTL      time.Duration
	Now      func() time.Time
}

func NewMemoryOutcomeStore(opts NewMemoryOutcomeStoreOptions) *MemoryOutcomeStore {
	s := &MemoryOutcomeStore{
		capacity: opts.Capacity,
		ttl:      opts.TTL,
		now:      opts.Now,
		entries:  make(map[uint64]memoryEntry),
	}
	if s.capacity <= 0 {
		s.capacity = DefaultOutcomeCapacity
	}
	if s.ttl <= 0 {
		s.ttl = DefaultOutcomeTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *MemoryOutcomeStore) Put(_ context.Context, outcome ActionOutcome) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.now()
	if _, exists := s.entries[outcome.SubmissionID]; !exists {
		s.order = append(s.order, outcome.SubmissionID)
	}
	s.entries[outcome.SubmissionID] = memoryEntry{outcome: outcome, storedAt: now}
	s.evictLocked(now)
	return nil
}

func (s *MemoryOutcomeStore) Get(_ context.Context, submissionID uint64) (ActionOutcome, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.evictLocked(s.now())
	entry, ok := s.entries[submissionID]
	return entry.outcome, ok, nil
}

// Len returns the number of retained outcomes.
func (s *MemoryOutcomeStore) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.entries)
}

func (s *MemoryOutcomeStore) evictLocked(now time.Time) {
	for len(s.order) > 0 {
		oldest := s.order[0]
		entry := s.entries[oldest]
		if len(s.order) <= s.capacity && now.Sub(entry.storedAt) < s.ttl {
			return
		}
		delete(s.entries, oldest)
		s.order = s.order[1:]
	}
}
