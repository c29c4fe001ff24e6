package ontology

import (
	"fmt"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
)

// Axioms evaluates a Mangle (Datalog) program deriving sort membership
// from the domain's base facts. Individuals declared under sorts are
// asserted as unary facts, the axiom rules are evaluated to a fixed
// point once at load time, and membership queries read the saturated
// fact store.
type Axioms struct {
	store       factstore.FactStore
	programInfo *analysis.ProgramInfo
	defined     map[string]bool
}

// NewAxioms compiles and evaluates an axiom program against the sorts'
// explicit individuals.
func NewAxioms(source string, sorts map[string]Sort) (*Axioms, error) {
	var b strings.Builder
	for name, s := range sorts {
		for _, individual := range s.Individuals {
			fmt.Fprintf(&b, "%s(%s).\n", name, nameConstant(individual))
		}
	}
	b.WriteString(source)

	unit, err := parse.Unit(strings.NewReader(b.String()))
	if err != nil {
		return nil, fmt.Errorf("parse axioms: %w", err)
	}

	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze axioms: %w", err)
	}

	store := factstore.NewSimpleInMemoryStore()
	if _, err := engine.EvalProgramWithStats(programInfo, store); err != nil {
		return nil, fmt.Errorf("evaluate axioms: %w", err)
	}

	defined := make(map[string]bool)
	for _, clause := range unit.Clauses {
		defined[clause.Head.Predicate.Symbol] = true
	}

	return &Axioms{store: store, programInfo: programInfo, defined: defined}, nil
}

// Defines reports whether the program asserts or derives facts for the
// given unary predicate.
func (a *Axioms) Defines(sortName string) bool { return a.defined[sortName] }

// InSort reports whether the individual is a derived member of the sort.
func (a *Axioms) InSort(sortName, individual string) bool {
	pred := ast.PredicateSym{Symbol: sortName, Arity: 1}
	query := ast.NewQuery(pred)

	want := nameConstant(individual)
	found := false
	_ = a.store.GetFacts(query, func(atom ast.Atom) error {
		if len(atom.Args) == 1 {
			if c, ok := atom.Args[0].(ast.Constant); ok && c.Symbol == want {
				found = true
			}
		}
		return nil
	})
	return found
}

// Members returns every derived member of the sort.
func (a *Axioms) Members(sortName string) []string {
	pred := ast.PredicateSym{Symbol: sortName, Arity: 1}
	query := ast.NewQuery(pred)

	var members []string
	_ = a.store.GetFacts(query, func(atom ast.Atom) error {
		if len(atom.Args) == 1 {
			if c, ok := atom.Args[0].(ast.Constant); ok {
				members = append(members, strings.TrimPrefix(c.Symbol, "/"))
			}
		}
		return nil
	})
	return members
}

// nameConstant converts an individual to a Mangle name constant,
// normalizing to the restricted name syntax.
func nameConstant(individual string) string {
	s := strings.ToLower(strings.TrimSpace(individual))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r == ' ' || r == '-':
			return '_'
		default:
			return -1
		}
	}, s)
	return "/" + s
}
