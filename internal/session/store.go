package session

import (
	"context"
	"sync"
)

// Turn is one completed exchange.
type Turn struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// Store keeps a bounded per-session window of recent exchanges, oldest
// evicted first.
type Store interface {
	History(ctx context.Context, sessionID string) ([]Turn, error)
	Append(ctx context.Context, sessionID string, turn Turn) error
}

// MemoryStore is the default in-process store. A single mutex guards the map;
// per-session contention is negligible at this capacity.
type MemoryStore struct {
	capacity int

	mu       sync.Mutex
	sessions map[string][]Turn
}

func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		capacity: capacity,
		sessions: make(map[string][]Turn),
	}
}

func (s *MemoryStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := s.sessions[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MemoryStore) Append(ctx context.Context, sessionID string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capacity <= 0 {
		return nil
	}
	turns := append(s.sessions[sessionID], turn)
	if len(turns) > s.capacity {
		turns = turns[len(turns)-s.capacity:]
	}
	s.sessions[sessionID] = turns
	return nil
}
