// Package engine implements the rule-based state update core of the
// dialogue manager: the four-phase control loop (interpret → integrate →
// select → generate) driven by priority-ranked declarative rules applied
// to fixpoint within each phase.
package engine

import (
	"context"
	"fmt"
	"hash/fnv"

	"go.uber.org/zap"

	"github.com/parley-dm/parley/internal/domain"
)

// DefaultMaxIterations bounds each phase's fixpoint loop.
const DefaultMaxIterations = 100

// GenerationRule renders a move of one of its types to text. Render
// returns false to decline, letting lower-priority rules or the external
// renderer take over.
type GenerationRule struct {
	Name     string
	Types    []domain.MoveType
	Priority int
	Render   func(move domain.DialogueMove, s *domain.InformationState) (string, bool)
}

func (g GenerationRule) matches(t domain.MoveType) bool {
	for _, mt := range g.Types {
		if mt == t {
			return true
		}
	}
	return false
}

// Engine applies rule sets to an information state. It performs no I/O
// of its own; the NLU and NLG boundaries are injected and only consulted
// at the edges of Interpret and Generate.
type Engine struct {
	rules         *RuleSet
	generators    []GenerationRule
	interpreter   domain.Interpreter
	renderer      domain.Renderer
	logger        *zap.Logger
	maxIterations int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxIterations overrides the per-phase fixpoint iteration cap.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithGenerators registers generation rules, keeping registration order
// for priority ties.
func WithGenerators(rules ...GenerationRule) Option {
	return func(e *Engine) { e.generators = append(e.generators, rules...) }
}

// New builds an engine over the given rule set and external boundaries.
// interpreter and renderer may be nil when the host injects already
// structured moves and renders elsewhere.
func New(rules *RuleSet, interpreter domain.Interpreter, renderer domain.Renderer, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		rules:         rules,
		interpreter:   interpreter,
		renderer:      renderer,
		logger:        logger,
		maxIterations: DefaultMaxIterations,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Interpret maps an utterance to a dialogue move: the external NLU
// produces a candidate, interpretation rules refine it. On NLU failure
// the state is left untouched.
func (e *Engine) Interpret(ctx context.Context, utterance, speaker string, s *domain.InformationState) (domain.DialogueMove, error) {
	if e.interpreter == nil {
		return domain.DialogueMove{}, &ExternalCallError{Boundary: "nlu", Err: fmt.Errorf("no interpreter configured")}
	}
	move, err := e.interpreter.Interpret(ctx, utterance, speaker, s)
	if err != nil {
		return domain.DialogueMove{}, &ExternalCallError{Boundary: "nlu", Err: err}
	}

	s.Control.Speaker = speaker
	s.Control.CandidateMove = &move
	if err := e.fixpoint(PhaseInterpretation, s); err != nil {
		return domain.DialogueMove{}, err
	}
	if s.Control.CandidateMove != nil {
		move = *s.Control.CandidateMove
	}
	s.Control.CandidateMove = nil

	e.logger.Debug("interpreted utterance",
		zap.String("utterance", utterance),
		zap.String("move_type", string(move.Type)),
		zap.Float64("confidence", move.Confidence()))
	return move, nil
}

// Integrate folds a move into the information state by running the
// integration fixpoint. The move is deposited as the shared latest move
// for rules to consume, then logged into the move history.
func (e *Engine) Integrate(move domain.DialogueMove, s *domain.InformationState) error {
	m := move
	s.Control.Speaker = move.Speaker
	s.Shared.LatestMove = &m
	if err := e.fixpoint(PhaseIntegration, s); err != nil {
		return err
	}
	// A move no rule claimed is benign; drop it rather than letting it
	// re-trigger rules on the next turn.
	s.Shared.LatestMove = nil
	s.Shared.Moves = append(s.Shared.Moves, m)
	return nil
}

// SelectAction runs the selection fixpoint and returns the next system
// move from the front of the agenda, or nil when no system move is due.
func (e *Engine) SelectAction(s *domain.InformationState) (*domain.DialogueMove, error) {
	if err := e.fixpoint(PhaseSelection, s); err != nil {
		return nil, err
	}
	if len(s.Private.Agenda) == 0 {
		return nil, nil
	}
	move := s.Private.Agenda[0]
	e.apply(s, "select_action",
		domain.PopAgenda{},
		domain.AppendNextMove{Move: move},
		domain.AppendMove{Move: move},
	)
	return &move, nil
}

// Generate renders a move to text: generation rules matching the move's
// type are tried in priority order, then the external renderer. An
// unrecognized move type never raises; it renders a generic placeholder
// and records the low confidence of that output.
func (e *Engine) Generate(ctx context.Context, move domain.DialogueMove, s *domain.InformationState) (string, error) {
	for _, g := range e.orderedGenerators(move.Type) {
		if out, ok := g.Render(move, s); ok {
			return out, nil
		}
	}
	if e.renderer != nil {
		out, err := e.renderer.Render(ctx, move, s)
		if err != nil {
			return "", &ExternalCallError{Boundary: "nlg", Err: err}
		}
		return out, nil
	}
	e.logger.Warn("no generation rule for move; rendering placeholder",
		zap.String("move_type", string(move.Type)))
	return fmt.Sprintf("(%s)", move.Type), nil
}

// orderedGenerators returns the generators matching the type, ranked by
// descending priority with registration order breaking ties.
func (e *Engine) orderedGenerators(t domain.MoveType) []GenerationRule {
	var matched []GenerationRule
	for _, g := range e.generators {
		if g.matches(t) {
			matched = append(matched, g)
		}
	}
	for i := 1; i < len(matched); i++ {
		for j := i; j > 0 && matched[j].Priority > matched[j-1].Priority; j-- {
			matched[j], matched[j-1] = matched[j-1], matched[j]
		}
	}
	return matched
}

// fixpoint repeatedly applies the single highest-ranked applicable rule
// until no rule's precondition holds. Termination is guarded two ways:
// an iteration cap, and detection of revisited states via a hash of the
// state summary.
func (e *Engine) fixpoint(phase Phase, s *domain.InformationState) error {
	seen := map[uint64]struct{}{summaryHash(s): {}}
	for i := 0; i < e.maxIterations; i++ {
		candidates := e.rules.Candidates(phase, s)
		if len(candidates) == 0 {
			return nil
		}
		rule := candidates[0]
		edits := rule.Then(s)
		e.apply(s, rule.Name, edits...)

		h := summaryHash(s)
		if _, revisited := seen[h]; revisited {
			return &CycleError{Phase: phase, Rule: rule.Name, Iteration: i + 1}
		}
		seen[h] = struct{}{}
	}
	return &IterationLimitError{Phase: phase, Limit: e.maxIterations}
}

// apply runs edits in order, tracing each one.
func (e *Engine) apply(s *domain.InformationState, source string, edits ...domain.Edit) {
	for _, edit := range edits {
		e.logger.Debug("apply edit",
			zap.String("rule", source),
			zap.String("edit", edit.String()))
		edit.Apply(s)
	}
}

func summaryHash(s *domain.InformationState) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s.Summary()))
	return h.Sum64()
}
