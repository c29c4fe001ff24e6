package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/parley-dm/parley/internal/domain"
	"github.com/parley-dm/parley/internal/nlg"
	"github.com/parley-dm/parley/internal/nlu"
)

func TestCandidatesRankDeterministically(t *testing.T) {
	var fired []string
	mk := func(name string, prio int) Rule {
		return Rule{
			Name:     name,
			Phase:    PhaseIntegration,
			Priority: prio,
			When:     func(s *domain.InformationState) bool { return true },
			Then: func(s *domain.InformationState) []domain.Edit {
				fired = append(fired, name)
				return nil
			},
		}
	}
	rs := NewRuleSet(mk("low", 10), mk("tie_a", 50), mk("tie_b", 50), mk("high", 90))

	s := domain.NewInformationState("system")
	for i := 0; i < 5; i++ {
		got := rs.Candidates(PhaseIntegration, s)
		if len(got) != 4 {
			t.Fatalf("expected 4 candidates, got %d", len(got))
		}
		want := []string{"high", "tie_a", "tie_b", "low"}
		for j, r := range got {
			if r.Name != want[j] {
				t.Fatalf("run %d: rank %d is %s, want %s", i, j, r.Name, want[j])
			}
		}
	}
}

func TestFixpointQuiesces(t *testing.T) {
	// One rule fires exactly once: its precondition goes false after the
	// edit it makes.
	rule := Rule{
		Name:     "commit_once",
		Phase:    PhaseIntegration,
		Priority: 50,
		When: func(s *domain.InformationState) bool {
			return !s.HasCommitment("done")
		},
		Then: func(s *domain.InformationState) []domain.Edit {
			return []domain.Edit{domain.AddCommitment{Proposition: "done"}}
		},
	}
	e := New(NewRuleSet(rule), nil, nil, zap.NewNop())

	s := domain.NewInformationState("system")
	move := domain.NewMove(domain.MoveAssert, domain.TextContent{Text: "x"}, "user")
	if err := e.Integrate(move, s); err != nil {
		t.Fatalf("expected quiescence, got %v", err)
	}
	if !s.HasCommitment("done") {
		t.Fatal("rule did not fire")
	}
	if len(s.Shared.Moves) != 1 {
		t.Fatalf("move should be logged once, got %d", len(s.Shared.Moves))
	}
}

func TestFixpointIterationLimit(t *testing.T) {
	// Every application reaches a fresh state, so only the cap stops it.
	n := 0
	runaway := Rule{
		Name:     "runaway",
		Phase:    PhaseIntegration,
		Priority: 50,
		When:     func(s *domain.InformationState) bool { return true },
		Then: func(s *domain.InformationState) []domain.Edit {
			n++
			return []domain.Edit{domain.AddCommitment{Proposition: fmt.Sprintf("step %d", n)}}
		},
	}
	e := New(NewRuleSet(runaway), nil, nil, zap.NewNop(), WithMaxIterations(7))

	s := domain.NewInformationState("system")
	err := e.Integrate(domain.NewMove(domain.MoveAssert, domain.TextContent{Text: "x"}, "user"), s)

	var limitErr *IterationLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected IterationLimitError, got %v", err)
	}
	if limitErr.Limit != 7 {
		t.Fatalf("expected limit 7 in error, got %d", limitErr.Limit)
	}
}

func TestFixpointCycleDetection(t *testing.T) {
	// The rule toggles a commitment, oscillating between two states.
	toggle := Rule{
		Name:     "toggle",
		Phase:    PhaseIntegration,
		Priority: 50,
		When:     func(s *domain.InformationState) bool { return true },
		Then: func(s *domain.InformationState) []domain.Edit {
			if s.HasCommitment("flag") {
				return []domain.Edit{domain.RetractCommitment{Proposition: "flag"}}
			}
			return []domain.Edit{domain.AddCommitment{Proposition: "flag"}}
		},
	}
	e := New(NewRuleSet(toggle), nil, nil, zap.NewNop())

	s := domain.NewInformationState("system")
	err := e.Integrate(domain.NewMove(domain.MoveAssert, domain.TextContent{Text: "x"}, "user"), s)

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if cycleErr.Rule != "toggle" {
		t.Fatalf("expected the toggling rule named, got %q", cycleErr.Rule)
	}
}

func TestInterpretLeavesStateUntouchedOnNLUError(t *testing.T) {
	interp := nlu.NewMockInterpreter()
	interp.Err = errors.New("model unavailable")
	e := New(NewRuleSet(), interp, nil, zap.NewNop())

	s := domain.NewInformationState("system")
	s.Commit("destination = paris")
	before := s.Summary()

	_, err := e.Interpret(context.Background(), "book it", "user", s)
	var extErr *ExternalCallError
	if !errors.As(err, &extErr) || extErr.Boundary != "nlu" {
		t.Fatalf("expected nlu ExternalCallError, got %v", err)
	}
	if s.Summary() != before {
		t.Fatal("state changed despite NLU failure")
	}
}

func TestInterpretRefinesCandidate(t *testing.T) {
	interp := nlu.NewMockInterpreter()
	interp.Response = domain.NewMove(domain.MoveAnswer, domain.TextContent{Text: "yes"}, "user")

	rules := NewRuleSet(interpretationRules()...)
	e := New(rules, interp, nil, zap.NewNop())

	s := domain.NewInformationState("system")
	s.PushQUD(domain.YNQuestion{Proposition: "needs_visa"})

	move, err := e.Interpret(context.Background(), "yes", "user", s)
	if err != nil {
		t.Fatalf("interpret: %v", err)
	}
	ac, ok := move.Content.(domain.AnswerContent)
	if !ok {
		t.Fatalf("expected the text retyped into an answer, got %#v", move.Content)
	}
	if ac.Answer.Polarity == nil || *ac.Answer.Polarity != domain.PolarityPositive {
		t.Fatal("expected a positive polar answer")
	}
	if ac.Answer.QuestionKey != "yn:needs_visa" {
		t.Fatalf("expected the QUD top referenced, got %q", ac.Answer.QuestionKey)
	}
	if s.Control.CandidateMove != nil {
		t.Fatal("candidate must be cleared after interpretation")
	}
}

func TestSelectActionTakesAgendaFront(t *testing.T) {
	e := New(NewRuleSet(), nil, nil, zap.NewNop())

	s := domain.NewInformationState("system")
	first := domain.NewMove(domain.MoveGreet, domain.TextContent{Text: "hello"}, "system")
	second := domain.NewMove(domain.MoveAsk, domain.QuestionContent{Question: domain.NewWhQuestion("destination")}, "system")
	s.Private.Agenda = append(s.Private.Agenda, first, second)

	got, err := e.SelectAction(s)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Fatalf("expected the agenda front, got %v", got)
	}
	if len(s.Private.Agenda) != 1 {
		t.Fatalf("agenda should shrink to 1, got %d", len(s.Private.Agenda))
	}
	if len(s.Shared.NextMoves) != 1 || len(s.Shared.Moves) != 1 {
		t.Fatal("selected move must be logged in next moves and history")
	}
}

func TestSelectActionNilWhenIdle(t *testing.T) {
	e := New(NewRuleSet(), nil, nil, zap.NewNop())
	got, err := e.SelectAction(domain.NewInformationState("system"))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no move, got %v", got)
	}
}

func TestGeneratePrefersRulesOverRenderer(t *testing.T) {
	renderer := nlg.NewMockRenderer()
	e := New(NewRuleSet(), nil, renderer, zap.NewNop(),
		WithGenerators(GenerationRule{
			Name:  "gen_greet",
			Types: []domain.MoveType{domain.MoveGreet},
			Render: func(m domain.DialogueMove, s *domain.InformationState) (string, bool) {
				return "Hello!", true
			},
		}))

	s := domain.NewInformationState("system")
	out, err := e.Generate(context.Background(), domain.NewMove(domain.MoveGreet, nil, "system"), s)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "Hello!" {
		t.Fatalf("expected the rule's text, got %q", out)
	}
	if len(renderer.Calls) != 0 {
		t.Fatal("renderer must not be consulted when a rule matched")
	}

	// No rule covers report; the renderer takes over.
	out, err = e.Generate(context.Background(), domain.NewMove(domain.MoveReport, nil, "system"), s)
	if err != nil {
		t.Fatalf("generate fallback: %v", err)
	}
	if out != "mock utterance" || len(renderer.Calls) != 1 {
		t.Fatalf("expected renderer fallback, got %q calls=%d", out, len(renderer.Calls))
	}
}

func TestGenerateDecliningRuleFallsThrough(t *testing.T) {
	e := New(NewRuleSet(), nil, nil, zap.NewNop(),
		WithGenerators(GenerationRule{
			Name:  "declines",
			Types: []domain.MoveType{domain.MovePerform},
			Render: func(m domain.DialogueMove, s *domain.InformationState) (string, bool) {
				return "", false
			},
		}))

	out, err := e.Generate(context.Background(), domain.NewMove(domain.MovePerform, nil, "system"), domain.NewInformationState("system"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "(perform)" {
		t.Fatalf("expected the placeholder, got %q", out)
	}
}

func TestGenerateRendererError(t *testing.T) {
	renderer := nlg.NewMockRenderer()
	renderer.Err = errors.New("template crashed")
	e := New(NewRuleSet(), nil, renderer, zap.NewNop())

	_, err := e.Generate(context.Background(), domain.NewMove(domain.MoveReport, nil, "system"), domain.NewInformationState("system"))
	var extErr *ExternalCallError
	if !errors.As(err, &extErr) || extErr.Boundary != "nlg" {
		t.Fatalf("expected nlg ExternalCallError, got %v", err)
	}
}
