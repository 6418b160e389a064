// Package job tracks asynchronous scan executions: where they are stored
// and how they move from pending to a terminal state.
package job

import (
	"context"
	"errors"
	"sync"

	"github.com/selimozcann/infoprobe/internal/model"
)

var (
	// ErrNotFound is returned for unknown job ids.
	ErrNotFound = errors.New("job not found")
	// ErrExists is returned when creating a job whose id is taken.
	ErrExists = errors.New("job already exists")
)

// Store persists jobs. Jobs are never deleted.
type Store interface {
	Create(ctx context.Context, j *model.Job) error
	Get(ctx context.Context, id string) (*model.Job, error)
	Update(ctx context.Context, j *model.Job) error
}

// MemoryStore keeps jobs in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]model.Job
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]model.Job)}
}

func (s *MemoryStore) Create(_ context.Context, j *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.ID]; ok {
		return ErrExists
	}
	s.jobs[j.ID] = *j
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &j, nil
}

func (s *MemoryStore) Update(_ context.Context, j *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.ID]; !ok {
		return ErrNotFound
	}
	s.jobs[j.ID] = *j
	return nil
}
