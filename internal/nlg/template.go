// Package nlg provides implementations of the renderer boundary the
// engine falls back to when no generation rule covers a move.
package nlg

import (
	"context"
	"fmt"
	"strings"

	"github.com/parley-dm/parley/internal/domain"
)

// TemplateRenderer renders moves with fixed surface templates keyed by
// move type. It is total: every move type renders to something.
type TemplateRenderer struct{}

func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{}
}

func (r *TemplateRenderer) Render(ctx context.Context, move domain.DialogueMove, state *domain.InformationState) (string, error) {
	text := domain.ContentText(move.Content)
	switch move.Type {
	case domain.MoveGreet:
		return "Hello!", nil
	case domain.MoveQuit:
		return "Goodbye!", nil
	case domain.MoveAsk:
		if text == "" {
			return "Could you tell me more?", nil
		}
		return fmt.Sprintf("What about %s?", strings.ReplaceAll(text, "_", " ")), nil
	case domain.MoveAnswer, domain.MoveAssert:
		if text == "" {
			return "I see.", nil
		}
		return text + ".", nil
	case domain.MoveReport:
		if text == "" {
			return "Done.", nil
		}
		return fmt.Sprintf("Okay, %s.", strings.ReplaceAll(text, "_", " ")), nil
	case domain.MoveICM:
		return "Could you clarify that?", nil
	default:
		return fmt.Sprintf("(%s)", move.Type), nil
	}
}
