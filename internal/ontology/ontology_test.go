package ontology

import (
	"path/filepath"
	"testing"

	"github.com/parley-dm/parley/internal/domain"
)

func loadTravel(t *testing.T) *Domain {
	t.Helper()
	dom, err := Load(filepath.Join("testdata", "travel.yaml"))
	if err != nil {
		t.Fatalf("load travel domain: %v", err)
	}
	return dom
}

func TestLoadTravelDomain(t *testing.T) {
	dom := loadTravel(t)

	if dom.Name != "travel" {
		t.Fatalf("expected domain name travel, got %q", dom.Name)
	}
	if len(dom.Predicates()) != 4 {
		t.Fatalf("expected 4 predicates, got %d", len(dom.Predicates()))
	}
	if !dom.HasPlan("book_travel") {
		t.Fatal("expected plan book_travel")
	}
}

func TestPredicateAliasLookup(t *testing.T) {
	dom := loadTravel(t)

	p, ok := dom.Predicate("city")
	if !ok || p.Name != "destination" {
		t.Fatalf("alias city should resolve to destination, got %v ok=%t", p.Name, ok)
	}
	if _, ok := dom.Predicate("meal"); ok {
		t.Fatal("unexpected predicate for meal")
	}
}

func TestInSortAxiomDerived(t *testing.T) {
	dom := loadTravel(t)

	// destination_city has no explicit members; the axiom derives them
	// from the city sort.
	if !dom.InSort("destination_city", "paris") {
		t.Fatal("expected paris derived into destination_city")
	}
	if !dom.InSort("destination_city", "Tokyo") {
		t.Fatal("sort membership should be case-insensitive")
	}
	if dom.InSort("destination_city", "atlantis") {
		t.Fatal("atlantis is not a city")
	}
}

func TestResolvesClosedSort(t *testing.T) {
	dom := loadTravel(t)
	q := domain.NewWhQuestion("destination")

	if !dom.Resolves(domain.Answer{Content: "london"}, q) {
		t.Fatal("london should resolve destination")
	}
	if dom.Resolves(domain.Answer{Content: "mars"}, q) {
		t.Fatal("mars is outside the destination sort")
	}
}

func TestResolvesOpenSort(t *testing.T) {
	dom := loadTravel(t)
	q := domain.NewWhQuestion("departure_date")

	// The date sort declares no individuals and no axiom derives it, so
	// any non-empty content is accepted.
	if !dom.Resolves(domain.Answer{Content: "next friday"}, q) {
		t.Fatal("open sort should accept any non-empty answer")
	}
	if dom.Resolves(domain.Answer{Content: "   "}, q) {
		t.Fatal("blank content should not resolve")
	}
}

func TestCommitmentRendering(t *testing.T) {
	dom := loadTravel(t)

	got := dom.Commitment(domain.NewWhQuestion("destination"), domain.Answer{Content: " paris "})
	if got != "destination = paris" {
		t.Fatalf("expected %q, got %q", "destination = paris", got)
	}

	neg := domain.PolarityNegative
	got = dom.Commitment(domain.YNQuestion{Proposition: "needs_visa"}, domain.Answer{Polarity: &neg, Content: "no"})
	if got != "not needs_visa" {
		t.Fatalf("expected %q, got %q", "not needs_visa", got)
	}
}

func TestPlanForReturnsFreshTrees(t *testing.T) {
	dom := loadTravel(t)

	first, ok := dom.PlanFor("book_travel")
	if !ok {
		t.Fatal("expected book_travel plan")
	}
	if len(first.Subplans) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(first.Subplans))
	}
	first.Subplans[0].Complete()

	second, _ := dom.PlanFor("book_travel")
	if second.Subplans[0].Status != domain.PlanActive {
		t.Fatal("plan instantiations must not share step state")
	}
}

func TestPlanForStepShapes(t *testing.T) {
	dom := loadTravel(t)
	plan, _ := dom.PlanFor("book_travel")

	if plan.Subplans[0].Type != domain.PlanFindout {
		t.Fatalf("step 0 should be findout, got %s", plan.Subplans[0].Type)
	}
	if plan.Subplans[3].Type != domain.PlanPerform || plan.Subplans[3].Goal() != "book_trip" {
		t.Fatalf("step 3 should perform book_trip, got %s %s", plan.Subplans[3].Type, plan.Subplans[3].Goal())
	}
	if plan.Subplans[4].Type != domain.PlanRespond || plan.Subplans[4].Goal() != "wh:price" {
		t.Fatalf("step 4 should respond price, got %s %s", plan.Subplans[4].Type, plan.Subplans[4].Goal())
	}
}

func TestWhTextFallback(t *testing.T) {
	dom := loadTravel(t)

	if got := dom.WhText("destination"); got != "Where would you like to travel to?" {
		t.Fatalf("expected declared wh text, got %q", got)
	}
	if got := dom.WhText("seat_number"); got != "What is the seat number?" {
		t.Fatalf("expected generic fallback, got %q", got)
	}
}

func TestParseRejectsBadDomains(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", `predicates: {dest: {sort: city}}`},
		{"predicate without sort", "name: x\npredicates:\n  dest: {wh: \"where?\"}\n"},
		{"plan over unknown predicate", "name: x\nplans:\n  p:\n    - findout: ghost\n"},
		{"ambiguous step", "name: x\npredicates:\n  dest: {sort: city}\nplans:\n  p:\n    - {findout: dest, respond: dest}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestAxiomsMembers(t *testing.T) {
	dom := loadTravel(t)
	if dom.axioms == nil {
		t.Fatal("expected compiled axioms")
	}
	members := dom.axioms.Members("destination_city")
	if len(members) != 4 {
		t.Fatalf("expected 4 derived cities, got %d (%v)", len(members), members)
	}
}
