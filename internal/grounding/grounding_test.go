package grounding

import (
	"testing"

	"github.com/parley-dm/parley/internal/domain"
)

func TestSelectStrategyBoundaries(t *testing.T) {
	tests := []struct {
		confidence float64
		want       Strategy
	}{
		{1.0, Optimistic},
		{0.8, Optimistic},
		{0.79, Cautious},
		{0.5, Cautious},
		{0.49, Pessimistic},
		{0.0, Pessimistic},
	}
	for _, tt := range tests {
		if got := SelectStrategy(domain.MoveAnswer, tt.confidence); got != tt.want {
			t.Errorf("confidence %.2f: expected %s, got %s", tt.confidence, tt.want, got)
		}
	}
}

func TestSelectStrategyIgnoresMoveType(t *testing.T) {
	for _, mt := range []domain.MoveType{domain.MoveAsk, domain.MoveAnswer, domain.MoveRequest, domain.MoveAssert} {
		if got := SelectStrategy(mt, 0.6); got != Cautious {
			t.Errorf("%s at 0.6: expected cautious, got %s", mt, got)
		}
	}
}

func TestFeedbackMoveCautious(t *testing.T) {
	about := domain.NewMove(domain.MoveAnswer, domain.AnswerContent{
		Answer: domain.Answer{Content: "paris", QuestionKey: "wh:destination"},
	}, "user")

	fb, ok := FeedbackMove(Cautious, about, "system")
	if !ok {
		t.Fatal("cautious strategy must produce feedback")
	}
	if fb.Type != domain.MoveICM {
		t.Fatalf("expected icm move, got %s", fb.Type)
	}
	c, ok := fb.Content.(domain.ICMContent)
	if !ok {
		t.Fatalf("expected ICM content, got %#v", fb.Content)
	}
	if c.Level != domain.ICMLevelUnderstanding || c.Polarity != domain.ICMInterrogative {
		t.Fatalf("expected understanding/interrogative, got %s/%s", c.Level, c.Polarity)
	}
	if c.About != "paris" {
		t.Fatalf("feedback should restate the content, got %q", c.About)
	}
}

func TestFeedbackMovePessimistic(t *testing.T) {
	about := domain.NewMove(domain.MoveRequest, domain.TextContent{Text: "mumble"}, "user")

	fb, ok := FeedbackMove(Pessimistic, about, "system")
	if !ok {
		t.Fatal("pessimistic strategy must produce feedback")
	}
	c := fb.Content.(domain.ICMContent)
	if c.Level != domain.ICMLevelPerception || c.Polarity != domain.ICMNegative {
		t.Fatalf("expected perception/negative, got %s/%s", c.Level, c.Polarity)
	}
}

func TestFeedbackMoveOptimistic(t *testing.T) {
	about := domain.NewMove(domain.MoveAnswer, domain.TextContent{Text: "paris"}, "user")
	if _, ok := FeedbackMove(Optimistic, about, "system"); ok {
		t.Fatal("optimistic strategy needs no feedback")
	}
}

func TestStrategyValid(t *testing.T) {
	for _, s := range []Strategy{Optimistic, Cautious, Pessimistic} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Strategy("reckless").Valid() {
		t.Error("unknown strategy should not be valid")
	}
}
