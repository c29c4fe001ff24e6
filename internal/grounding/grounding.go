// Package grounding maps recognition confidence to a feedback policy:
// how much explicit confirmation the system asks for before folding a
// move into the shared state.
package grounding

import (
	"github.com/parley-dm/parley/internal/domain"
)

// Strategy is the feedback policy chosen for a move.
type Strategy string

const (
	// Optimistic accepts the move without feedback.
	Optimistic Strategy = "optimistic"
	// Cautious asks for an explicit understanding confirmation.
	Cautious Strategy = "cautious"
	// Pessimistic signals a perception failure and asks for a repeat.
	Pessimistic Strategy = "pessimistic"
)

// Confidence thresholds. These are exact compatibility boundaries:
// >= 0.8 optimistic, [0.5, 0.8) cautious, < 0.5 pessimistic.
const (
	OptimisticThreshold = 0.8
	CautiousThreshold   = 0.5
)

// SelectStrategy is a pure, total function of move type and confidence.
func SelectStrategy(moveType domain.MoveType, confidence float64) Strategy {
	_ = moveType // every move type currently shares the same thresholds
	switch {
	case confidence >= OptimisticThreshold:
		return Optimistic
	case confidence >= CautiousThreshold:
		return Cautious
	default:
		return Pessimistic
	}
}

// FeedbackMove builds the ICM move implementing the strategy for the
// given move, speaking as agentID. Returns false for Optimistic, which
// needs no feedback.
func FeedbackMove(strategy Strategy, about domain.DialogueMove, agentID string) (domain.DialogueMove, bool) {
	switch strategy {
	case Cautious:
		content := domain.ICMContent{
			Level:    domain.ICMLevelUnderstanding,
			Polarity: domain.ICMInterrogative,
			About:    domain.ContentText(about.Content),
		}
		return domain.NewMove(domain.MoveICM, content, agentID), true
	case Pessimistic:
		content := domain.ICMContent{
			Level:    domain.ICMLevelPerception,
			Polarity: domain.ICMNegative,
		}
		return domain.NewMove(domain.MoveICM, content, agentID), true
	default:
		return domain.DialogueMove{}, false
	}
}

func (s Strategy) String() string { return string(s) }

// Valid reports whether s is one of the three defined strategies.
func (s Strategy) Valid() bool {
	switch s {
	case Optimistic, Cautious, Pessimistic:
		return true
	}
	return false
}
