// Package session owns the per-conversation state and sequences one turn
// through the engine's phases: interpret, integrate, select, generate,
// and device dispatch. The engine itself mutates state without
// synchronization, so each session is guarded by its own lock and its
// state is never shared across sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/parley-dm/parley/internal/domain"
	"github.com/parley-dm/parley/internal/engine"
	"github.com/parley-dm/parley/internal/store"
)

// maxSelectRounds bounds the select/dispatch loop within one turn.
const maxSelectRounds = 10

// Manager owns the live sessions and their persistence.
type Manager struct {
	engine  *engine.Engine
	store   domain.SessionStore
	device  domain.Device
	agentID string
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*managedSession
}

type managedSession struct {
	mu   sync.Mutex
	sess *domain.Session
}

// NewManager builds a session manager. device may be nil when the host
// executes actions itself.
func NewManager(eng *engine.Engine, st domain.SessionStore, dev domain.Device, agentID string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		engine:   eng,
		store:    st,
		device:   dev,
		agentID:  agentID,
		logger:   logger,
		sessions: make(map[string]*managedSession),
	}
}

// Reply is what the system produced for one turn.
type Reply struct {
	// Texts are the rendered system utterances, in order.
	Texts []string
	// Moves are the system moves behind the texts.
	Moves []domain.DialogueMove
	// Ended reports that the system performed a quit move.
	Ended bool
}

// Turn processes one user utterance end to end and persists the
// resulting snapshot.
func (m *Manager) Turn(ctx context.Context, sessionID, speaker, utterance string) (Reply, error) {
	ms, err := m.acquire(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	state := ms.sess.State

	move, err := m.engine.Interpret(ctx, utterance, speaker, state)
	if err != nil {
		return Reply{}, fmt.Errorf("turn %s: %w", sessionID, err)
	}
	return m.advance(ctx, ms, move)
}

// Inject processes an already-structured move, bypassing NLU. Used by
// hosts with their own understanding pipeline.
func (m *Manager) Inject(ctx context.Context, sessionID string, move domain.DialogueMove) (Reply, error) {
	ms, err := m.acquire(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return m.advance(ctx, ms, move)
}

func (m *Manager) advance(ctx context.Context, ms *managedSession, move domain.DialogueMove) (Reply, error) {
	state := ms.sess.State

	if err := m.engine.Integrate(move, state); err != nil {
		return Reply{}, fmt.Errorf("integrate: %w", err)
	}

	var reply Reply
	for round := 0; round < maxSelectRounds; round++ {
		next, err := m.engine.SelectAction(state)
		if err != nil {
			return Reply{}, fmt.Errorf("select: %w", err)
		}
		if next != nil {
			text, err := m.engine.Generate(ctx, *next, state)
			if err != nil {
				return Reply{}, fmt.Errorf("generate: %w", err)
			}
			reply.Texts = append(reply.Texts, text)
			reply.Moves = append(reply.Moves, *next)
			if next.Type == domain.MoveQuit {
				reply.Ended = true
			}
			continue
		}
		dispatched, err := m.dispatchActions(ctx, state)
		if err != nil {
			return Reply{}, err
		}
		if !dispatched {
			break
		}
	}

	if err := m.store.Save(ctx, ms.sess); err != nil {
		return Reply{}, fmt.Errorf("save session: %w", err)
	}
	return reply, nil
}

// dispatchActions executes pending device requests and feeds results
// back for the next selection round. Returns whether anything ran.
func (m *Manager) dispatchActions(ctx context.Context, state *domain.InformationState) (bool, error) {
	if m.device == nil || len(state.Private.Actions) == 0 {
		return false, nil
	}
	req := state.Private.Actions[0]
	res, err := m.device.Execute(ctx, req)
	if err != nil {
		// The request stays queued; the state is unchanged on an
		// external failure.
		return false, fmt.Errorf("device %s: %w", req.Action, err)
	}
	state.Private.Actions = state.Private.Actions[1:]
	state.Control.LastActionResult = &res
	m.logger.Debug("executed action",
		zap.String("action", req.Action),
		zap.Bool("success", res.Success))
	return true, nil
}

// acquire returns the live session, loading the stored snapshot or
// creating a fresh state as needed.
func (m *Manager) acquire(ctx context.Context, sessionID string) (*managedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ms, ok := m.sessions[sessionID]; ok {
		return ms, nil
	}

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("load session %s: %w", sessionID, err)
		}
		sess = &domain.Session{
			ID:      sessionID,
			AgentID: m.agentID,
			State:   domain.NewInformationState(m.agentID),
		}
	}
	ms := &managedSession{sess: sess}
	m.sessions[sessionID] = ms
	return ms, nil
}

// State returns an independent copy of a session's state for inspection.
func (m *Manager) State(ctx context.Context, sessionID string) (*domain.InformationState, error) {
	ms, err := m.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.sess.State.Clone(), nil
}

// Drop forgets a live session and deletes its snapshot.
func (m *Manager) Drop(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if err := m.store.Delete(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}
