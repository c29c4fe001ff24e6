package accommodate

import (
	"testing"

	"github.com/parley-dm/parley/internal/domain"
	"github.com/parley-dm/parley/internal/ontology"
)

const testDomain = `name: travel
sorts:
  city:
    individuals: [paris, london]
predicates:
  destination:
    sort: city
    aliases: [city]
  departure_date:
    sort: date
plans:
  book_travel:
    - findout: destination
    - findout: departure_date
`

func testDom(t *testing.T) *ontology.Domain {
	t.Helper()
	dom, err := ontology.Parse([]byte(testDomain))
	if err != nil {
		t.Fatalf("parse test domain: %v", err)
	}
	return dom
}

func stateWithPlan(t *testing.T, dom *ontology.Domain) *domain.InformationState {
	t.Helper()
	st := domain.NewInformationState("system")
	plan, ok := dom.PlanFor("book_travel")
	if !ok {
		t.Fatal("missing book_travel plan")
	}
	st.PushPlan(plan)
	return st
}

func TestQuestionFromIssueSet(t *testing.T) {
	dom := testDom(t)
	st := domain.NewInformationState("system")
	issue := domain.NewWhQuestion("departure_date")
	st.Private.Issues = append(st.Private.Issues, issue)

	q, fromIssue := Question(st, dom, domain.NewWhQuestion("departure_date"))
	if !fromIssue {
		t.Fatal("expected the question found among issues")
	}
	if q.Key() != "wh:departure_date" {
		t.Fatalf("wrong question accommodated: %s", q.Key())
	}
}

func TestQuestionAliasReinterpretation(t *testing.T) {
	dom := testDom(t)
	st := domain.NewInformationState("system")

	q, fromIssue := Question(st, dom, domain.NewWhQuestion("city"))
	if fromIssue {
		t.Fatal("nothing in the issue set should match")
	}
	if q.Key() != "wh:destination" {
		t.Fatalf("alias should reinterpret to destination, got %s", q.Key())
	}
}

func TestQuestionUnknownPassesThrough(t *testing.T) {
	dom := testDom(t)
	st := domain.NewInformationState("system")

	q, fromIssue := Question(st, dom, domain.NewWhQuestion("meal"))
	if fromIssue || q.Key() != "wh:meal" {
		t.Fatalf("unknown question should pass through, got %s fromIssue=%t", q.Key(), fromIssue)
	}
}

func TestTaskAnaphoraFromLastMove(t *testing.T) {
	st := domain.NewInformationState("system")
	st.Shared.Moves = append(st.Shared.Moves,
		domain.NewMove(domain.MoveAnswer, domain.AnswerContent{
			Answer: domain.Answer{Content: "the paris trip"},
		}, "user"))

	res := Task(st, "cancel it")
	if res.Kind != TaskAnaphora {
		t.Fatalf("expected anaphora, got %s", res.Kind)
	}
	if res.Text != "cancel the paris trip" {
		t.Fatalf("expected pronoun substituted, got %q", res.Text)
	}
}

func TestTaskAnaphoraFallsBackToPlanGoal(t *testing.T) {
	dom := testDom(t)
	st := stateWithPlan(t, dom)

	res := Task(st, "stop that")
	if res.Kind != TaskAnaphora {
		t.Fatalf("expected anaphora, got %s", res.Kind)
	}
	if res.Target != "book_travel" {
		t.Fatalf("expected the plan goal as referent, got %q", res.Target)
	}
}

func TestTaskAnaphoraUnresolved(t *testing.T) {
	st := domain.NewInformationState("system")

	res := Task(st, "do it again")
	if res.Kind != TaskUnresolved {
		t.Fatalf("expected unresolved with no referent, got %s", res.Kind)
	}
	if res.Text != "do it again" {
		t.Fatalf("unresolved text must be unchanged, got %q", res.Text)
	}
}

func TestTaskContinuation(t *testing.T) {
	dom := testDom(t)
	st := stateWithPlan(t, dom)

	res := Task(st, "also check the weather")
	if res.Kind != TaskContinuation {
		t.Fatalf("expected continuation, got %s", res.Kind)
	}
	if res.Text != "check the weather" {
		t.Fatalf("expected connective stripped, got %q", res.Text)
	}
	if res.Target != "book_travel" {
		t.Fatalf("expected parent goal book_travel, got %q", res.Target)
	}
}

func TestTaskContinuationWithoutPlan(t *testing.T) {
	st := domain.NewInformationState("system")
	res := Task(st, "and then what")
	if res.Kind != TaskUnresolved {
		t.Fatalf("continuation without a plan should be unresolved, got %s", res.Kind)
	}
}

func TestTaskCancellationTargets(t *testing.T) {
	dom := testDom(t)

	st := stateWithPlan(t, dom)
	res := Task(st, "cancel")
	if res.Kind != TaskCancellation || res.Text != "cancel book_travel" {
		t.Fatalf("expected cancel book_travel, got %s %q", res.Kind, res.Text)
	}

	st = domain.NewInformationState("system")
	st.PushQUD(domain.NewWhQuestion("destination"))
	res = Task(st, "stop")
	if res.Kind != TaskCancellation || res.Text != "cancel current question" {
		t.Fatalf("expected cancel current question, got %s %q", res.Kind, res.Text)
	}

	st = domain.NewInformationState("system")
	res = Task(st, "abort")
	if res.Kind != TaskUnresolved {
		t.Fatalf("cancellation with nothing to cancel should be unresolved, got %s", res.Kind)
	}
}

func TestTaskPassthrough(t *testing.T) {
	st := domain.NewInformationState("system")
	res := Task(st, "  book a flight to paris  ")
	if res.Kind != TaskPassthrough {
		t.Fatalf("expected passthrough, got %s", res.Kind)
	}
	if res.Text != "book a flight to paris" {
		t.Fatalf("expected trimmed text, got %q", res.Text)
	}
}

func TestAnswerPrefersQUDTop(t *testing.T) {
	dom := testDom(t)
	st := domain.NewInformationState("system")
	st.PushQUD(domain.NewWhQuestion("destination"))
	st.Private.Issues = append(st.Private.Issues, domain.NewWhQuestion("departure_date"))

	q, source := Answer(st, dom, domain.Answer{Content: "paris"})
	if source != AnswerQUDTop {
		t.Fatalf("expected qud_top, got %s", source)
	}
	if q.Key() != "wh:destination" {
		t.Fatalf("wrong target question: %s", q.Key())
	}
}

func TestAnswerVolunteeredMatchesIssue(t *testing.T) {
	dom := testDom(t)
	st := domain.NewInformationState("system")
	st.Private.Issues = append(st.Private.Issues,
		domain.NewWhQuestion("departure_date"),
		domain.NewWhQuestion("destination"),
	)

	// Issues are tried newest first, so destination wins.
	q, source := Answer(st, dom, domain.Answer{Content: "paris"})
	if source != AnswerIssue {
		t.Fatalf("expected issue source, got %s", source)
	}
	if q.Key() != "wh:destination" {
		t.Fatalf("wrong issue matched: %s", q.Key())
	}
}

func TestAnswerNoHome(t *testing.T) {
	dom := testDom(t)
	st := domain.NewInformationState("system")

	if _, source := Answer(st, dom, domain.Answer{Content: "paris"}); source != AnswerNone {
		t.Fatalf("expected none, got %s", source)
	}
}

func TestInferPlan(t *testing.T) {
	q := domain.NewWhQuestion("destination")
	p := InferPlan(q)
	if p.Type != domain.PlanFindout {
		t.Fatalf("expected a findout, got %s", p.Type)
	}
	if p.Goal() != "wh:destination" {
		t.Fatalf("expected the question as goal, got %q", p.Goal())
	}
}
