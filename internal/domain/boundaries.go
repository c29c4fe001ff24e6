package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActionRequest is a pending device action emitted by a perform plan step.
type ActionRequest struct {
	ID          uuid.UUID         `json:"id"`
	Action      string            `json:"action"`
	Args        map[string]string `json:"args,omitempty"`
	RequestedAt time.Time         `json:"requested_at"`
}

// NewActionRequest builds an action request with a fresh ID.
func NewActionRequest(action string, args map[string]string) ActionRequest {
	return ActionRequest{
		ID:          uuid.New(),
		Action:      action,
		Args:        args,
		RequestedAt: time.Now().UTC(),
	}
}

// ActionResult is the outcome a device reports for an executed request.
type ActionResult struct {
	RequestID uuid.UUID `json:"request_id"`
	Action    string    `json:"action"`
	Success   bool      `json:"success"`
	Output    string    `json:"output,omitempty"`
}

// Interpreter is the NLU boundary: it turns a raw utterance into a
// structured dialogue move. The engine treats it as an opaque, possibly
// fallible producer; on error the information state is left untouched.
type Interpreter interface {
	Interpret(ctx context.Context, utterance string, speaker string, state *InformationState) (DialogueMove, error)
}

// Renderer is the NLG boundary the engine falls back to when no
// generation rule covers a move.
type Renderer interface {
	Render(ctx context.Context, move DialogueMove, state *InformationState) (string, error)
}

// Device executes perform actions and reports the outcome.
type Device interface {
	Execute(ctx context.Context, req ActionRequest) (ActionResult, error)
}

// Session is a snapshot of one conversation: its identity plus the full
// information state. Snapshots round-trip losslessly through JSON.
type Session struct {
	ID        string            `json:"id"`
	AgentID   string            `json:"agent_id"`
	State     *InformationState `json:"state"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SessionInfo is the listing view of a stored session.
type SessionInfo struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agent_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionStore persists conversation snapshots.
type SessionStore interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context) ([]SessionInfo, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, ttl time.Duration) (int64, error)
}
