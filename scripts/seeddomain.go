// Seed script for setting up a local parley checkout.
// Writes the bundled travel domain to domain.yaml and stores a demo
// session mid-conversation so inspect/monitor have something to show.
// Run with: go run ./scripts/seeddomain.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/parley-dm/parley/internal/domain"
	"github.com/parley-dm/parley/internal/store"
)

const travelDomain = `name: travel

sorts:
  city:
    individuals: [paris, london, tokyo, berlin]
  class:
    individuals: [economy, business, first]

predicates:
  destination:
    sort: destination_city
    wh: "Where would you like to travel to?"
    aliases: [city, "travel to"]
  departure_date:
    sort: date
    wh: "When would you like to depart?"
    aliases: [date, when, departure]
  class:
    sort: class
    wh: "Which class would you like to fly?"
  price:
    sort: amount
    wh: "What does the trip cost?"
    aliases: [cost, fare]

plans:
  book_travel:
    - findout: destination
    - findout: departure_date
    - findout: class
    - perform: book_trip
    - respond: price

axioms: |
  destination_city(X) :- city(X).
`

func main() {
	envFile := os.Getenv("PARLEY_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	domainPath := os.Getenv("DOMAIN_PATH")
	if domainPath == "" {
		domainPath = "domain.yaml"
	}
	if err := os.WriteFile(domainPath, []byte(travelDomain), 0o644); err != nil {
		log.Fatalf("Failed to write domain file: %v", err)
	}
	fmt.Printf("Wrote travel domain to %s\n", domainPath)

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = "parley.db"
	}
	st, err := store.OpenSQLite(sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	state := demoState("system")
	sess := &domain.Session{
		ID:      uuid.NewString(),
		AgentID: "system",
		State:   state,
	}

	ctx := context.Background()
	if err := st.Save(ctx, sess); err != nil {
		log.Fatalf("Failed to save demo session: %v", err)
	}

	fmt.Println("Seeded demo session:")
	fmt.Printf("  ID: %s\n", sess.ID)
	fmt.Printf("  Store: %s\n", sqlitePath)
	fmt.Println()
	fmt.Printf("Inspect it with: parley inspect %s\n", sess.ID)
}

// demoState builds a state two turns into a booking: the destination is
// committed and the departure date is under discussion.
func demoState(agentID string) *domain.InformationState {
	state := domain.NewInformationState(agentID)

	plan := domain.NewPlan(
		domain.PlanPerform,
		domain.ActionContent{Action: "book_travel"},
		domain.Findout(domain.WhQuestion{Predicate: "destination", Variable: "x"}),
		domain.Findout(domain.WhQuestion{Predicate: "departure_date", Variable: "x"}),
		domain.Findout(domain.WhQuestion{Predicate: "class", Variable: "x"}),
	)
	plan.Subplans[0].Complete()
	state.PushPlan(plan)

	state.Commit("destination = paris")
	state.PushQUD(domain.WhQuestion{Predicate: "departure_date", Variable: "x"})

	user := domain.NewMove(domain.MoveAnswer, domain.AnswerContent{
		Answer: domain.NewAnswer("paris", domain.WhQuestion{Predicate: "destination", Variable: "x"}),
	}, "user")
	system := domain.NewMove(domain.MoveAsk, domain.QuestionContent{
		Question: domain.WhQuestion{Predicate: "departure_date", Variable: "x"},
	}, agentID)
	system.Timestamp = user.Timestamp.Add(time.Second)
	state.Shared.Moves = append(state.Shared.Moves, user, system)
	state.Control.NextSpeaker = "user"

	return state
}
