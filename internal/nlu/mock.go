package nlu

import (
	"context"

	"github.com/parley-dm/parley/internal/domain"
)

// MockInterpreter is a configurable interpreter for testing. Set the
// response fields to control what Interpret returns; Responses, when
// non-empty, is consumed one move per call before falling back to
// Response.
type MockInterpreter struct {
	Response  domain.DialogueMove
	Responses []domain.DialogueMove
	Err       error

	// Call tracking for assertions
	Calls []string
}

func NewMockInterpreter() *MockInterpreter {
	return &MockInterpreter{}
}

func (m *MockInterpreter) Interpret(ctx context.Context, utterance, speaker string, state *domain.InformationState) (domain.DialogueMove, error) {
	m.Calls = append(m.Calls, utterance)
	if m.Err != nil {
		return domain.DialogueMove{}, m.Err
	}
	if len(m.Responses) > 0 {
		next := m.Responses[0]
		m.Responses = m.Responses[1:]
		return next, nil
	}
	return m.Response, nil
}
