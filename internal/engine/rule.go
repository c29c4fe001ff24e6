package engine

import (
	"sort"

	"github.com/parley-dm/parley/internal/domain"
)

// Phase is one of the four stages of the control loop.
type Phase string

const (
	PhaseInterpretation Phase = "interpretation"
	PhaseIntegration    Phase = "integration"
	PhaseSelection      Phase = "selection"
	PhaseGeneration     Phase = "generation"
)

func ValidPhase(p string) bool {
	switch Phase(p) {
	case PhaseInterpretation, PhaseIntegration, PhaseSelection, PhaseGeneration:
		return true
	}
	return false
}

// Rule is a declarative state update: when the precondition holds, the
// effect yields the edits to apply. Effects must be pure with respect to
// everything outside the state (no hidden I/O) and should move the state
// toward fewer applicable preconditions; the engine's iteration cap and
// cycle detection catch the ones that don't.
type Rule struct {
	Name     string
	Phase    Phase
	Priority int
	When     func(s *domain.InformationState) bool
	Then     func(s *domain.InformationState) []domain.Edit
}

// RuleSet is an insertion-ordered rule registry.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet builds a rule set from the given rules, preserving order.
func NewRuleSet(rules ...Rule) *RuleSet {
	rs := &RuleSet{}
	rs.Add(rules...)
	return rs
}

// Add registers rules. Registration order is the tie-break order for
// equal priorities, so it must be deterministic across runs.
func (rs *RuleSet) Add(rules ...Rule) {
	rs.rules = append(rs.rules, rules...)
}

// Len returns the number of registered rules.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// Candidates returns the rules of the given phase whose precondition
// currently holds, ranked by descending priority with ties broken by
// registration order. The ranking is deterministic: identical rule sets
// and states always produce the same list.
func (rs *RuleSet) Candidates(phase Phase, s *domain.InformationState) []Rule {
	var matched []Rule
	for _, r := range rs.rules {
		if r.Phase != phase {
			continue
		}
		if r.When != nil && !r.When(s) {
			continue
		}
		matched = append(matched, r)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority > matched[j].Priority
	})
	return matched
}
