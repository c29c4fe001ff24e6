package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Shared is the part of the information state both parties can see.
type Shared struct {
	// QUD is the stack of questions under discussion; the top (last
	// element) is the most recently raised unresolved issue.
	QUD Questions `json:"qud"`
	// Commitments is the deduplicated set of propositions both parties
	// are committed to, kept in insertion order for reproducibility.
	Commitments []string `json:"commitments"`
	// LatestMove is the move currently being integrated; integration
	// rules consume it and clear it.
	LatestMove *DialogueMove  `json:"latest_move,omitempty"`
	Moves      []DialogueMove `json:"moves"`
	NextMoves  []DialogueMove `json:"next_moves"`
}

// Private is one agent's own view: plans, intentions and beliefs the other
// party cannot see.
type Private struct {
	// Plans is a stack of active plans; the top (last element) is the
	// plan currently being pursued.
	Plans []*Plan `json:"plans"`
	// Agenda is the queue of moves the agent intends to perform next.
	Agenda []DialogueMove `json:"agenda"`
	// Beliefs is the agent's key/value belief store.
	Beliefs map[string]string `json:"beliefs"`
	// Issues are questions not yet on QUD but available for
	// accommodation of volunteered information.
	Issues              Questions       `json:"issues"`
	OverriddenQuestions Questions       `json:"overridden_questions"`
	Actions             []ActionRequest `json:"actions"`
}

// Control carries turn bookkeeping and the typed fields phases hand data
// to each other through.
type Control struct {
	Speaker     string `json:"speaker"`
	NextSpeaker string `json:"next_speaker"`
	AgentID     string `json:"agent_id"`
	// CandidateMove is the move interpretation produced and
	// interpretation rules refine.
	CandidateMove *DialogueMove `json:"candidate_move,omitempty"`
	// PendingGround is a move whose integration is deferred until
	// grounding feedback succeeds.
	PendingGround *DialogueMove `json:"pending_ground,omitempty"`
	// LastActionResult is the most recent device outcome awaiting
	// integration by selection rules.
	LastActionResult *ActionResult `json:"last_action_result,omitempty"`
}

// InformationState is the aggregate the engine reads and rewrites each
// turn. One state is owned by exactly one conversation session; the
// engine mutates it in place without synchronization.
type InformationState struct {
	Shared  Shared  `json:"shared"`
	Private Private `json:"private"`
	Control Control `json:"control"`
}

// NewInformationState builds an empty state for the given agent.
func NewInformationState(agentID string) *InformationState {
	return &InformationState{
		Private: Private{Beliefs: make(map[string]string)},
		Control: Control{AgentID: agentID, NextSpeaker: agentID},
	}
}

// TopQUD returns the top of the QUD stack without popping.
func (s *InformationState) TopQUD() (Question, bool) {
	if len(s.Shared.QUD) == 0 {
		return nil, false
	}
	return s.Shared.QUD[len(s.Shared.QUD)-1], true
}

// PushQUD raises a question. Pushing a question whose key already sits on
// the stack re-raises it to the top instead of duplicating it.
func (s *InformationState) PushQUD(q Question) {
	key := q.Key()
	for i, existing := range s.Shared.QUD {
		if existing.Key() == key {
			s.Shared.QUD = append(s.Shared.QUD[:i], s.Shared.QUD[i+1:]...)
			break
		}
	}
	s.Shared.QUD = append(s.Shared.QUD, q)
}

// PopQUD removes and returns the top question. Popping an empty stack is
// a programming error and panics rather than corrupting shared state.
func (s *InformationState) PopQUD() Question {
	n := len(s.Shared.QUD)
	if n == 0 {
		panic("dialogue: pop of empty QUD stack")
	}
	q := s.Shared.QUD[n-1]
	s.Shared.QUD = s.Shared.QUD[:n-1]
	return q
}

// Commit adds a proposition to the commitment set; duplicates are ignored.
func (s *InformationState) Commit(proposition string) {
	for _, c := range s.Shared.Commitments {
		if c == proposition {
			return
		}
	}
	s.Shared.Commitments = append(s.Shared.Commitments, proposition)
}

// Retract removes a proposition from the commitment set if present.
func (s *InformationState) Retract(proposition string) {
	for i, c := range s.Shared.Commitments {
		if c == proposition {
			s.Shared.Commitments = append(s.Shared.Commitments[:i], s.Shared.Commitments[i+1:]...)
			return
		}
	}
}

// HasCommitment reports whether any commitment starts with the given
// prefix, e.g. "destination =".
func (s *InformationState) HasCommitment(prefix string) bool {
	for _, c := range s.Shared.Commitments {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// CommitmentFor returns the first commitment with the given prefix.
func (s *InformationState) CommitmentFor(prefix string) (string, bool) {
	for _, c := range s.Shared.Commitments {
		if strings.HasPrefix(c, prefix) {
			return c, true
		}
	}
	return "", false
}

// ActivePlan returns the top of the plan stack if it is still active.
func (s *InformationState) ActivePlan() *Plan {
	if len(s.Private.Plans) == 0 {
		return nil
	}
	p := s.Private.Plans[len(s.Private.Plans)-1]
	if p.Status != PlanActive {
		return nil
	}
	return p
}

// TopPlan returns the top of the plan stack regardless of status.
func (s *InformationState) TopPlan() *Plan {
	if len(s.Private.Plans) == 0 {
		return nil
	}
	return s.Private.Plans[len(s.Private.Plans)-1]
}

// PushPlan puts a plan on top of the stack.
func (s *InformationState) PushPlan(p *Plan) {
	s.Private.Plans = append(s.Private.Plans, p)
}

// PopPlan removes and returns the top plan. Popping an empty stack is a
// programming error and panics.
func (s *InformationState) PopPlan() *Plan {
	n := len(s.Private.Plans)
	if n == 0 {
		panic("dialogue: pop of empty plan stack")
	}
	p := s.Private.Plans[n-1]
	s.Private.Plans = s.Private.Plans[:n-1]
	return p
}

// PlanAddresses reports whether any plan on the stack contains a step for
// the question with the given key.
func (s *InformationState) PlanAddresses(questionKey string) bool {
	for _, p := range s.Private.Plans {
		if p.FindStep(questionKey) != nil {
			return true
		}
	}
	return false
}

// LastMoveOfType returns the most recent logged move of one of the given
// types, newest first.
func (s *InformationState) LastMoveOfType(types ...MoveType) (DialogueMove, bool) {
	for i := len(s.Shared.Moves) - 1; i >= 0; i-- {
		for _, t := range types {
			if s.Shared.Moves[i].Type == t {
				return s.Shared.Moves[i], true
			}
		}
	}
	return DialogueMove{}, false
}

// Summary renders a compact structural digest of the state. The engine
// hashes it for cycle detection, so it must cover every field a rule can
// read or write.
func (s *InformationState) Summary() string {
	var b strings.Builder
	b.WriteString("qud:")
	for _, q := range s.Shared.QUD {
		b.WriteString(q.Key())
		b.WriteByte(';')
	}
	b.WriteString("|com:")
	for _, c := range s.Shared.Commitments {
		b.WriteString(c)
		b.WriteByte(';')
	}
	fmt.Fprintf(&b, "|moves:%d|next:%d", len(s.Shared.Moves), len(s.Shared.NextMoves))
	if s.Shared.LatestMove != nil {
		fmt.Fprintf(&b, "|latest:%s:%s", s.Shared.LatestMove.Type, s.Shared.LatestMove.ID)
	}
	b.WriteString("|plans:")
	for _, p := range s.Private.Plans {
		summarizePlan(&b, p)
	}
	fmt.Fprintf(&b, "|agenda:%d", len(s.Private.Agenda))
	for _, m := range s.Private.Agenda {
		fmt.Fprintf(&b, ",%s", m.Type)
	}
	b.WriteString("|beliefs:")
	keys := make([]string, 0, len(s.Private.Beliefs))
	for k := range s.Private.Beliefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s;", k, s.Private.Beliefs[k])
	}
	b.WriteString("|issues:")
	for _, q := range s.Private.Issues {
		b.WriteString(q.Key())
		b.WriteByte(';')
	}
	fmt.Fprintf(&b, "|over:%d|actions:%d", len(s.Private.OverriddenQuestions), len(s.Private.Actions))
	fmt.Fprintf(&b, "|ctl:%s>%s", s.Control.Speaker, s.Control.NextSpeaker)
	if s.Control.CandidateMove != nil {
		// Interpretation rules rewrite the candidate's content in place,
		// so the digest must cover it, not just the ID.
		fmt.Fprintf(&b, "|cand:%s:%s", s.Control.CandidateMove.ID, s.Control.CandidateMove.Type)
		if data, err := MarshalContent(s.Control.CandidateMove.Content); err == nil {
			b.Write(data)
		}
	}
	if s.Control.PendingGround != nil {
		fmt.Fprintf(&b, "|pend:%s", s.Control.PendingGround.ID)
	}
	if s.Control.LastActionResult != nil {
		fmt.Fprintf(&b, "|ares:%s:%t", s.Control.LastActionResult.Action, s.Control.LastActionResult.Success)
	}
	return b.String()
}

func summarizePlan(b *strings.Builder, p *Plan) {
	fmt.Fprintf(b, "(%s:%s:%s", p.Type, ContentText(p.Content), p.Status)
	for _, sp := range p.Subplans {
		summarizePlan(b, sp)
	}
	b.WriteByte(')')
}
