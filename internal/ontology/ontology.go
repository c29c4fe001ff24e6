// Package ontology holds the static domain definition the dialogue engine
// queries: predicates, sorts with their individuals, and plan templates.
// The registry is read-only once loaded; rules and accommodation only ask
// questions of it.
package ontology

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/parley-dm/parley/internal/domain"
)

// Predicate is a domain relation a wh-question can range over.
type Predicate struct {
	Name string
	// Sort names the sort valid answers must belong to.
	Sort string
	// Wh is the surface form used when asking for the predicate's value.
	Wh string
	// Aliases are alternative surface names for the predicate, used when
	// accommodating questions from free text.
	Aliases []string
}

// Sort is a named set of individuals.
type Sort struct {
	Name        string
	Individuals []string
}

// Contains reports whether the individual is an explicit member.
func (s Sort) Contains(individual string) bool {
	individual = strings.ToLower(strings.TrimSpace(individual))
	for _, i := range s.Individuals {
		if strings.ToLower(i) == individual {
			return true
		}
	}
	return false
}

// Domain is the loaded registry. Queries are safe for concurrent readers;
// nothing mutates a Domain after Load.
type Domain struct {
	Name       string
	predicates map[string]Predicate
	predOrder  []string
	sorts      map[string]Sort
	plans      map[string][]planStep
	axioms     *Axioms
}

type domainYAML struct {
	Name       string                    `yaml:"name"`
	Sorts      map[string]sortYAML       `yaml:"sorts"`
	Predicates map[string]predicateYAML  `yaml:"predicates"`
	Plans      map[string][]planStepYAML `yaml:"plans"`
	Axioms     string                    `yaml:"axioms"`
}

type sortYAML struct {
	Individuals []string `yaml:"individuals"`
}

type predicateYAML struct {
	Sort    string   `yaml:"sort"`
	Wh      string   `yaml:"wh"`
	Aliases []string `yaml:"aliases"`
}

type planStepYAML struct {
	Findout string `yaml:"findout"`
	Raise   string `yaml:"raise"`
	Respond string `yaml:"respond"`
	Perform string `yaml:"perform"`
}

type planStep struct {
	typ    domain.PlanType
	target string
}

// Load reads and validates a YAML domain definition.
func Load(path string) (*Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read domain file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Domain from raw YAML.
func Parse(data []byte) (*Domain, error) {
	var raw domainYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse domain yaml: %w", err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("domain is missing a name")
	}

	d := &Domain{
		Name:       raw.Name,
		predicates: make(map[string]Predicate, len(raw.Predicates)),
		sorts:      make(map[string]Sort, len(raw.Sorts)),
		plans:      make(map[string][]planStep, len(raw.Plans)),
	}

	for name, s := range raw.Sorts {
		d.sorts[name] = Sort{Name: name, Individuals: s.Individuals}
	}

	for name, p := range raw.Predicates {
		if p.Sort == "" {
			return nil, fmt.Errorf("predicate %q has no sort", name)
		}
		d.predicates[name] = Predicate{Name: name, Sort: p.Sort, Wh: p.Wh, Aliases: p.Aliases}
		d.predOrder = append(d.predOrder, name)
	}

	for name, steps := range raw.Plans {
		compiled := make([]planStep, 0, len(steps))
		for i, step := range steps {
			ps, err := compileStep(step)
			if err != nil {
				return nil, fmt.Errorf("plan %q step %d: %w", name, i, err)
			}
			if ps.typ != domain.PlanPerform {
				if _, ok := d.predicates[ps.target]; !ok {
					return nil, fmt.Errorf("plan %q step %d: unknown predicate %q", name, i, ps.target)
				}
			}
			compiled = append(compiled, ps)
		}
		d.plans[name] = compiled
	}

	if raw.Axioms != "" {
		ax, err := NewAxioms(raw.Axioms, d.sorts)
		if err != nil {
			return nil, fmt.Errorf("compile axioms: %w", err)
		}
		d.axioms = ax
	}

	return d, nil
}

func compileStep(step planStepYAML) (planStep, error) {
	set := 0
	var ps planStep
	if step.Findout != "" {
		ps = planStep{typ: domain.PlanFindout, target: step.Findout}
		set++
	}
	if step.Raise != "" {
		ps = planStep{typ: domain.PlanRaise, target: step.Raise}
		set++
	}
	if step.Respond != "" {
		ps = planStep{typ: domain.PlanRespond, target: step.Respond}
		set++
	}
	if step.Perform != "" {
		ps = planStep{typ: domain.PlanPerform, target: step.Perform}
		set++
	}
	if set != 1 {
		return planStep{}, fmt.Errorf("exactly one of findout/raise/respond/perform required")
	}
	return ps, nil
}

// Predicate looks up a predicate by name or alias.
func (d *Domain) Predicate(name string) (Predicate, bool) {
	if p, ok := d.predicates[name]; ok {
		return p, true
	}
	lower := strings.ToLower(name)
	for _, key := range d.predOrder {
		p := d.predicates[key]
		for _, alias := range p.Aliases {
			if strings.ToLower(alias) == lower {
				return p, true
			}
		}
	}
	return Predicate{}, false
}

// Predicates returns the declared predicates in registration order.
func (d *Domain) Predicates() []Predicate {
	out := make([]Predicate, 0, len(d.predOrder))
	for _, name := range d.predOrder {
		out = append(out, d.predicates[name])
	}
	return out
}

// Sort looks up a sort by name.
func (d *Domain) Sort(name string) (Sort, bool) {
	s, ok := d.sorts[name]
	return s, ok
}

// InSort reports whether the individual belongs to the sort, consulting
// the explicit member list first and derived axiom facts second.
func (d *Domain) InSort(sortName, individual string) bool {
	if s, ok := d.sorts[sortName]; ok && s.Contains(individual) {
		return true
	}
	if d.axioms != nil {
		return d.axioms.InSort(sortName, individual)
	}
	return false
}

// HasPlan reports whether a plan template with the given name exists.
func (d *Domain) HasPlan(name string) bool {
	_, ok := d.plans[name]
	return ok
}

// PlanNames returns the template names in sorted order, so matching
// against free text is deterministic.
func (d *Domain) PlanNames() []string {
	names := make([]string, 0, len(d.plans))
	for name := range d.plans {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PlanFor instantiates a fresh plan tree from the named template. Each
// call returns a new tree; the caller owns it exclusively.
func (d *Domain) PlanFor(name string) (*domain.Plan, bool) {
	steps, ok := d.plans[name]
	if !ok {
		return nil, false
	}
	root := domain.NewPlan(domain.PlanPerform, domain.ActionContent{Action: name})
	for _, step := range steps {
		switch step.typ {
		case domain.PlanPerform:
			root.AddSubplan(domain.NewPlan(domain.PlanPerform, domain.ActionContent{Action: step.target}))
		default:
			q := domain.NewWhQuestion(step.target)
			root.AddSubplan(domain.NewPlan(step.typ, domain.QuestionContent{Question: q}))
		}
	}
	return root, true
}

// QuestionFor returns the wh-question for a predicate name or alias.
func (d *Domain) QuestionFor(name string) (domain.Question, bool) {
	p, ok := d.Predicate(name)
	if !ok {
		return nil, false
	}
	return domain.NewWhQuestion(p.Name), true
}

// WhText returns the surface form used when asking for a predicate's
// value, falling back to a generic rendering.
func (d *Domain) WhText(predicate string) string {
	if p, ok := d.predicates[predicate]; ok && p.Wh != "" {
		return p.Wh
	}
	return fmt.Sprintf("What is the %s?", strings.ReplaceAll(predicate, "_", " "))
}

// Resolves reports whether the answer resolves the question under this
// domain: the question's own semantic test must pass, and for
// wh-questions the answer content must additionally belong to the
// predicate's sort when the sort is known.
func (d *Domain) Resolves(a domain.Answer, q domain.Question) bool {
	if !q.ResolvesWith(a) {
		return false
	}
	wh, ok := q.(domain.WhQuestion)
	if !ok {
		return true
	}
	p, ok := d.predicates[wh.Predicate]
	if !ok {
		return true
	}
	closed := false
	if s, known := d.sorts[p.Sort]; known && len(s.Individuals) > 0 {
		closed = true
	}
	if d.axioms != nil && d.axioms.Defines(p.Sort) {
		closed = true
	}
	if !closed {
		// Open sort: accept any individual.
		return strings.TrimSpace(a.Content) != ""
	}
	return d.InSort(p.Sort, a.Content)
}

// Commitment renders the proposition a resolving answer commits both
// parties to, e.g. "destination = paris".
func (d *Domain) Commitment(q domain.Question, a domain.Answer) string {
	switch v := q.(type) {
	case domain.WhQuestion:
		return fmt.Sprintf("%s = %s", v.Predicate, strings.TrimSpace(a.Content))
	case domain.YNQuestion:
		if a.Polarity != nil && *a.Polarity == domain.PolarityNegative {
			return "not " + v.Proposition
		}
		return v.Proposition
	case domain.AltQuestion:
		return fmt.Sprintf("%s = %s", v.Predicate, strings.TrimSpace(a.Content))
	default:
		return strings.TrimSpace(a.Content)
	}
}
