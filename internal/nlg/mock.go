package nlg

import (
	"context"

	"github.com/parley-dm/parley/internal/domain"
)

// MockRenderer is a configurable renderer for testing.
type MockRenderer struct {
	Response string
	Err      error

	// Call tracking for assertions
	Calls []domain.DialogueMove
}

func NewMockRenderer() *MockRenderer {
	return &MockRenderer{Response: "mock utterance"}
}

func (m *MockRenderer) Render(ctx context.Context, move domain.DialogueMove, state *domain.InformationState) (string, error) {
	m.Calls = append(m.Calls, move)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
