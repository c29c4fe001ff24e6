package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/parley-dm/parley/internal/domain"
)

// MemoryStore is an in-process session store. Snapshots are stored in
// serialized form so Get returns an independent copy, same as the
// durable backends.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

type memorySession struct {
	agentID   string
	state     []byte
	createdAt time.Time
	updatedAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memorySession)}
}

func (s *MemoryStore) Save(ctx context.Context, sess *domain.Session) error {
	data, err := domain.EncodeState(sess.State)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := s.sessions[sess.ID]
	created := now
	if ok {
		created = existing.createdAt
	}
	s.sessions[sess.ID] = memorySession{
		agentID:   sess.AgentID,
		state:     data,
		createdAt: created,
		updatedAt: now,
	}
	sess.CreatedAt = created
	sess.UpdatedAt = now
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	state, err := domain.DecodeState(m.state)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		ID:        id,
		AgentID:   m.agentID,
		State:     state,
		CreatedAt: m.createdAt,
		UpdatedAt: m.updatedAt,
	}, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]domain.SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]domain.SessionInfo, 0, len(s.sessions))
	for id, m := range s.sessions {
		infos = append(infos, domain.SessionInfo{ID: id, AgentID: m.agentID, UpdatedAt: m.updatedAt})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].UpdatedAt.After(infos[j].UpdatedAt) })
	return infos, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-ttl)
	var removed int64
	for id, m := range s.sessions {
		if m.updatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
