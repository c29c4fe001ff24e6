package nlu

import (
	"context"
	"testing"

	"github.com/parley-dm/parley/internal/domain"
	"github.com/parley-dm/parley/internal/ontology"
)

const patternDomain = `name: travel
sorts:
  city:
    individuals: [paris, london, tokyo]
predicates:
  destination:
    sort: city
    wh: "Where do you want to go?"
  departure_date:
    sort: date
`

func patternInterpreter(t *testing.T) *PatternInterpreter {
	t.Helper()
	dom, err := ontology.Parse([]byte(patternDomain))
	if err != nil {
		t.Fatalf("parse domain: %v", err)
	}
	return NewPatternInterpreter(dom)
}

func TestClassifyDialogueActs(t *testing.T) {
	p := patternInterpreter(t)
	s := domain.NewInformationState("system")

	tests := []struct {
		utterance  string
		wantType   domain.MoveType
		confidence float64
	}{
		{"hello", domain.MoveGreet, 0.95},
		{"Good morning!", domain.MoveGreet, 0.95},
		{"bye", domain.MoveQuit, 0.95},
		{"that's all", domain.MoveQuit, 0.95},
		{"huh?", domain.MoveICM, 0.9},
		{"I don't understand", domain.MoveICM, 0.9},
		{"yes", domain.MoveAnswer, 0.9},
		{"Nope.", domain.MoveAnswer, 0.9},
		{"book a trip", domain.MoveRequest, 0.85},
		{"i want to see my bookings", domain.MoveRequest, 0.85},
		{"the weather is nice today", domain.MoveAssert, 0.6},
	}
	for _, tc := range tests {
		move, err := p.Interpret(context.Background(), tc.utterance, "user", s)
		if err != nil {
			t.Fatalf("%q: %v", tc.utterance, err)
		}
		if move.Type != tc.wantType {
			t.Errorf("%q: got %s, want %s", tc.utterance, move.Type, tc.wantType)
		}
		if move.Confidence() != tc.confidence {
			t.Errorf("%q: confidence %.2f, want %.2f", tc.utterance, move.Confidence(), tc.confidence)
		}
	}
}

func TestRecognizeQuestionByPredicate(t *testing.T) {
	p := patternInterpreter(t)
	s := domain.NewInformationState("system")

	move, err := p.Interpret(context.Background(), "What is the destination?", "user", s)
	if err != nil {
		t.Fatal(err)
	}
	if move.Type != domain.MoveAsk {
		t.Fatalf("got %s, want ask", move.Type)
	}
	qc, ok := move.Content.(domain.QuestionContent)
	if !ok {
		t.Fatalf("expected structured question, got %T", move.Content)
	}
	if qc.Question.Key() != "wh:destination" {
		t.Fatalf("got %s", qc.Question.Key())
	}
	if move.Confidence() != 0.85 {
		t.Fatalf("confidence %.2f", move.Confidence())
	}
}

func TestUnrecognizedQuestionIsLowConfidence(t *testing.T) {
	p := patternInterpreter(t)
	s := domain.NewInformationState("system")

	move, err := p.Interpret(context.Background(), "what time is the game?", "user", s)
	if err != nil {
		t.Fatal(err)
	}
	if move.Type != domain.MoveAsk {
		t.Fatalf("got %s, want ask", move.Type)
	}
	if _, ok := move.Content.(domain.TextContent); !ok {
		t.Fatalf("unmatched question should stay text, got %T", move.Content)
	}
	if move.Confidence() != 0.4 {
		t.Fatalf("confidence %.2f, want 0.4", move.Confidence())
	}
}

func TestRecognizeSortIndividualAsAnswer(t *testing.T) {
	p := patternInterpreter(t)
	s := domain.NewInformationState("system")
	s.PushQUD(domain.NewWhQuestion("destination"))

	move, err := p.Interpret(context.Background(), "Paris.", "user", s)
	if err != nil {
		t.Fatal(err)
	}
	if move.Type != domain.MoveAnswer {
		t.Fatalf("got %s, want answer", move.Type)
	}
	ac := move.Content.(domain.AnswerContent)
	if ac.Answer.Content != "paris" {
		t.Fatalf("got %q", ac.Answer.Content)
	}
	if ac.Answer.QuestionKey != "wh:destination" {
		t.Fatalf("got key %q", ac.Answer.QuestionKey)
	}
	if move.Confidence() != 0.9 {
		t.Fatalf("confidence %.2f", move.Confidence())
	}
}

func TestRecognizeAnswerFromIssue(t *testing.T) {
	p := patternInterpreter(t)
	s := domain.NewInformationState("system")
	s.Private.Issues = append(s.Private.Issues, domain.NewWhQuestion("destination"))

	move, err := p.Interpret(context.Background(), "london", "user", s)
	if err != nil {
		t.Fatal(err)
	}
	if move.Type != domain.MoveAnswer {
		t.Fatalf("got %s, want answer", move.Type)
	}
	ac := move.Content.(domain.AnswerContent)
	if ac.Answer.QuestionKey != "wh:destination" {
		t.Fatalf("got key %q", ac.Answer.QuestionKey)
	}
}

func TestOpenSortFallbackTakesShortUtterance(t *testing.T) {
	p := patternInterpreter(t)
	s := domain.NewInformationState("system")
	s.PushQUD(domain.NewWhQuestion("departure_date"))

	move, err := p.Interpret(context.Background(), "next friday", "user", s)
	if err != nil {
		t.Fatal(err)
	}
	if move.Type != domain.MoveAnswer {
		t.Fatalf("got %s, want answer", move.Type)
	}
	ac := move.Content.(domain.AnswerContent)
	if ac.Answer.Content != "next friday" {
		t.Fatalf("got %q", ac.Answer.Content)
	}
	if move.Confidence() != 0.7 {
		t.Fatalf("confidence %.2f, want 0.7", move.Confidence())
	}

	// A long utterance is not swallowed as an answer.
	move, err = p.Interpret(context.Background(), "well it depends on a number of different things", "user", s)
	if err != nil {
		t.Fatal(err)
	}
	if move.Type != domain.MoveAssert {
		t.Fatalf("got %s, want assert fallback", move.Type)
	}
}

func TestNewInterpreterProviders(t *testing.T) {
	dom, err := ontology.Parse([]byte(patternDomain))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewInterpreter("pattern", dom); err != nil {
		t.Fatalf("pattern: %v", err)
	}
	if _, err := NewInterpreter("", dom); err != nil {
		t.Fatalf("default: %v", err)
	}
	if _, err := NewInterpreter("mock", dom); err != nil {
		t.Fatalf("mock: %v", err)
	}
	if _, err := NewInterpreter("neural", dom); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}
