package internal

import (
	"context"
	"sync"

	"github.com/lychee-technology/formwave"
)

// MemoryAnalyticsStore keeps analytics records in process memory.
type MemoryAnalyticsStore struct {
	mu      sync.RWMutex
	records map[string]*formwave.FormAnalytics
}

var _ formwave.AnalyticsStore = (*MemoryAnalyticsStore)(nil)

func NewMemoryAnalyticsStore() *MemoryAnalyticsStore {
	return &MemoryAnalyticsStore{records: make(map[string]*formwave.FormAnalytics)}
}

func (s *MemoryAnalyticsStore) Load(ctx context.Context, formID string) (*formwave.FormAnalytics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[formID].Clone(), nil
}

func (s *MemoryAnalyticsStore) Save(ctx context.Context, record *formwave.FormAnalytics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.FormID] = record.Clone()
	return nil
}

func (s *MemoryAnalyticsStore) Close() error { return nil }
