// Package storage implements ports.QuizStore in memory and on a bbolt file.
package storage

import (
	"context"
	"maps"
	"sync"

	"github.com/cwilkins507/my-portfolio/internal/domain"
)

// Memory keeps quiz snapshots in a map. It is meant for tests and local
// development; snapshots are lost on restart.
type Memory struct {
	mu    sync.RWMutex
	snaps map[string]domain.QuizSnapshot
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{snaps: make(map[string]domain.QuizSnapshot)}
}

// Load returns a copy of the stored snapshot.
func (m *Memory) Load(_ context.Context, sessionID string) (domain.QuizSnapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.snaps[sessionID]
	if !ok {
		return domain.QuizSnapshot{}, false, nil
	}

	return copySnapshot(snap), true, nil
}

// Save stores a copy of snap.
func (m *Memory) Save(_ context.Context, sessionID string, snap domain.QuizSnapshot) error {
	m.mu.Lock()
	m.snaps[sessionID] = copySnapshot(snap)
	m.mu.Unlock()

	return nil
}

// Delete removes the session.
func (m *Memory) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.snaps, sessionID)
	m.mu.Unlock()

	return nil
}

// Len reports the number of stored sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.snaps)
}

// Name implements ports.HealthChecker.
func (m *Memory) Name() string { return "quiz-store" }

// Check implements ports.HealthChecker. The map is always available.
func (m *Memory) Check(ctx context.Context) error { return ctx.Err() }

func copySnapshot(snap domain.QuizSnapshot) domain.QuizSnapshot {
	snap.Answers = maps.Clone(snap.Answers)
	return snap
}
