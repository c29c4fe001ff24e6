package monitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/parley-dm/parley/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeSnapshot(t *testing.T, path string, s *domain.InformationState) {
	t.Helper()
	data, err := domain.EncodeState(s)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestMonitorReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")

	s := domain.NewInformationState("system")
	s.Commit("destination = paris")
	writeSnapshot(t, path, s)

	changes := make(chan Change, 8)
	m := New(path, func(c Change) { changes <- c }, nil,
		WithPollInterval(20*time.Millisecond),
		WithReloadLimit(1000, 1000))

	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	// Initial load, empty baseline diff.
	select {
	case c := <-changes:
		if c.Diff != "" {
			t.Fatalf("first load should have no diff, got %q", c.Diff)
		}
		if !c.State.HasCommitment("destination = paris") {
			t.Fatal("loaded state missing commitment")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no initial load")
	}

	s.Commit("class = business")
	writeSnapshot(t, path, s)

	select {
	case c := <-changes:
		if !strings.Contains(c.Diff, "class = business") {
			t.Fatalf("diff should mention the new commitment, got %q", c.Diff)
		}
		if !c.State.HasCommitment("class = business") {
			t.Fatal("reloaded state missing new commitment")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("change not observed")
	}

	// An identical rewrite is not a change.
	writeSnapshot(t, path, s)
	select {
	case c := <-changes:
		t.Fatalf("unexpected change: %q", c.Diff)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMonitorStartIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	writeSnapshot(t, path, domain.NewInformationState("system"))

	m := New(path, nil, nil, WithPollInterval(20*time.Millisecond))
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	m.Stop()
	m.Stop()
}

func TestMonitorToleratesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.json")

	changes := make(chan Change, 8)
	m := New(path, func(c Change) { changes <- c }, nil,
		WithPollInterval(20*time.Millisecond),
		WithReloadLimit(1000, 1000))
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	// The file appears later; polling picks it up.
	s := domain.NewInformationState("system")
	s.PushQUD(domain.NewWhQuestion("destination"))
	writeSnapshot(t, path, s)

	select {
	case c := <-changes:
		if top, ok := c.State.TopQUD(); !ok || top.Key() != "wh:destination" {
			t.Fatalf("got %v", c.State.Shared.QUD)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("file appearance not observed")
	}
}

func TestDiff(t *testing.T) {
	a := domain.NewInformationState("system")
	a.Commit("destination = paris")
	b := a.Clone()

	if d := Diff(a, b); d != "" {
		t.Fatalf("clones should not differ: %q", d)
	}

	b.Commit("class = economy")
	if d := Diff(a, b); d == "" {
		t.Fatal("expected a diff")
	}

	if d := Diff(nil, b); d != "" {
		t.Fatalf("nil baseline has no diff, got %q", d)
	}
}
