package staging

import (
	"context"
	"sync"
)

// Store keeps one Stage per session id
type Store interface {
	// Get returns the stage for sessionID, or nil if there is none
	Get(ctx context.Context, sessionID string) (*Stage, error)
	Put(ctx context.Context, sessionID string, stage *Stage) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore is a process-local Store. Stages of expired sessions are
// removed by the session cleanup, so it suits a single server process.
type MemoryStore struct {
	mu     sync.RWMutex
	stages map[string]*Stage
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stages: make(map[string]*Stage)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Stage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stage, ok := m.stages[sessionID]
	if !ok {
		return nil, nil
	}
	return stage.Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, sessionID string, stage *Stage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stages[sessionID] = stage.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.stages, sessionID)
	return nil
}
