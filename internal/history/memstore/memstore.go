// Package memstore is an in-memory history.Persistence, sufficient for
// tests and single-process operation. A durable implementation would
// live alongside internal/workflow/repository.go's sqlx-backed
// Repository, which this module does not bundle since "the persistence
// layer for users and saved workflow definitions" is explicitly out of
// spec.md's scope.
package memstore

import (
	"context"
	"sync"

	"github.com/SHXZ7/autofloww/internal/history"
)

// Store is a mutex-guarded, process-local history.Persistence.
type Store struct {
	mu          sync.Mutex
	records     []history.ExecutionRecord
	execCounts  map[string]int
}

// New returns an empty Store.
func New() *Store {
	return &Store{execCounts: make(map[string]int)}
}

func (s *Store) SaveExecution(_ context.Context, rec history.ExecutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *Store) IncrementExecutionCount(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.execCounts[userID]++
	return nil
}

// Records returns a snapshot of every saved record, for tests.
func (s *Store) Records() []history.ExecutionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]history.ExecutionRecord, len(s.records))
	copy(out, s.records)
	return out
}

// ExecutionCount returns how many times userID's executions were
// counted, for tests.
func (s *Store) ExecutionCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execCounts[userID]
}
