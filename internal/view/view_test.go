package view

import (
	"strings"
	"testing"

	"github.com/parley-dm/parley/internal/domain"
)

func sampleState() *domain.InformationState {
	s := domain.NewInformationState("system")
	s.PushQUD(domain.NewWhQuestion("departure_date"))
	s.PushQUD(domain.NewWhQuestion("destination"))
	s.Commit("class = economy")
	plan := domain.NewPlan(domain.PlanPerform, domain.ActionContent{Action: "book_travel"})
	step := domain.NewPlan(domain.PlanFindout, domain.QuestionContent{Question: domain.NewWhQuestion("destination")})
	step.Status = domain.PlanCompleted
	plan.AddSubplan(step)
	s.PushPlan(plan)
	s.Control.NextSpeaker = "user"
	return s
}

func TestRenderShowsStateSections(t *testing.T) {
	out := Render(sampleState())

	for _, want := range []string{
		"Information State",
		"wh:destination",
		"wh:departure_date",
		"class = economy",
		"book_travel",
		"next speaker: user",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	// The stack top is marked.
	if !strings.Contains(out, "▸") {
		t.Error("QUD top not marked")
	}
	// The completed step renders struck through.
	if !strings.Contains(out, "✓") {
		t.Error("completed step not marked")
	}
}

func TestRenderNilState(t *testing.T) {
	if out := Render(nil); !strings.Contains(out, "(no state)") {
		t.Fatalf("got %q", out)
	}
}

func TestRenderEmptyState(t *testing.T) {
	out := Render(domain.NewInformationState("system"))
	if !strings.Contains(out, "(empty)") || !strings.Contains(out, "(none)") {
		t.Fatalf("empty sections not marked: %q", out)
	}
}

func TestRenderHTML(t *testing.T) {
	s := sampleState()
	s.Shared.Moves = append(s.Shared.Moves,
		domain.NewMove(domain.MoveAsk, domain.QuestionContent{Question: domain.NewWhQuestion("destination")}, "system"))

	var b strings.Builder
	if err := RenderHTML(&b, s); err != nil {
		t.Fatal(err)
	}
	out := b.String()

	for _, want := range []string{
		"<title>Dialogue State</title>",
		`class="top"`,
		"wh:destination [wh]",
		"<li>class = economy</li>",
		`class="done"`,
		"system ask: wh:destination",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}
}
