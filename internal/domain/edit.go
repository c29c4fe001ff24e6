package domain

import "fmt"

// Edit is a single primitive state update. Rule effects return a sequence
// of edits instead of mutating the state directly, so every update the
// engine performs is inspectable and traceable. The set of edits is
// closed; Apply panics on invariant violations (e.g. popping an empty
// stack) rather than silently repairing them.
type Edit interface {
	Apply(s *InformationState)
	String() string
}

// PushQUD raises a question onto the QUD stack.
type PushQUD struct{ Question Question }

func (e PushQUD) Apply(s *InformationState) { s.PushQUD(e.Question) }
func (e PushQUD) String() string            { return "push_qud(" + e.Question.Key() + ")" }

// PopQUD pops the top question.
type PopQUD struct{}

func (PopQUD) Apply(s *InformationState) { s.PopQUD() }
func (PopQUD) String() string            { return "pop_qud" }

// AddCommitment adds a proposition to the shared commitment set.
type AddCommitment struct{ Proposition string }

func (e AddCommitment) Apply(s *InformationState) { s.Commit(e.Proposition) }
func (e AddCommitment) String() string            { return "commit(" + e.Proposition + ")" }

// RetractCommitment removes a proposition from the commitment set.
type RetractCommitment struct{ Proposition string }

func (e RetractCommitment) Apply(s *InformationState) { s.Retract(e.Proposition) }
func (e RetractCommitment) String() string            { return "retract(" + e.Proposition + ")" }

// PushPlan puts a plan on top of the private plan stack.
type PushPlan struct{ Plan *Plan }

func (e PushPlan) Apply(s *InformationState) { s.PushPlan(e.Plan) }
func (e PushPlan) String() string            { return "push_plan(" + e.Plan.Goal() + ")" }

// PopPlan removes the top plan.
type PopPlan struct{}

func (PopPlan) Apply(s *InformationState) { s.PopPlan() }
func (PopPlan) String() string            { return "pop_plan" }

// CompleteStep completes the plan step addressing the given question key
// (or, with an empty key, the current active leaf) and cascades
// completion up the tree.
type CompleteStep struct{ QuestionKey string }

func (e CompleteStep) Apply(s *InformationState) {
	p := s.TopPlan()
	if p == nil {
		panic("dialogue: complete step with empty plan stack")
	}
	var step *Plan
	if e.QuestionKey == "" {
		step = p.ActiveLeaf()
	} else {
		for _, candidate := range s.Private.Plans {
			if found := candidate.FindStep(e.QuestionKey); found != nil {
				step = found
				p = candidate
				break
			}
		}
	}
	if step == nil || step.Status != PlanActive {
		return
	}
	step.Complete()
	p.Refresh()
}

func (e CompleteStep) String() string { return "complete_step(" + e.QuestionKey + ")" }

// AddSubtask attaches a subplan to the top plan, e.g. for a request
// continuing the current task.
type AddSubtask struct{ Plan *Plan }

func (e AddSubtask) Apply(s *InformationState) {
	p := s.TopPlan()
	if p == nil {
		panic("dialogue: add subtask with empty plan stack")
	}
	p.AddSubplan(e.Plan)
}

func (e AddSubtask) String() string { return "add_subtask(" + e.Plan.Goal() + ")" }

// AbandonPlan abandons the top plan without popping it.
type AbandonPlan struct{}

func (AbandonPlan) Apply(s *InformationState) {
	p := s.TopPlan()
	if p == nil {
		panic("dialogue: abandon with empty plan stack")
	}
	p.Abandon()
}

func (AbandonPlan) String() string { return "abandon_plan" }

// SetBelief stores a private belief.
type SetBelief struct{ Key, Value string }

func (e SetBelief) Apply(s *InformationState) {
	if s.Private.Beliefs == nil {
		s.Private.Beliefs = make(map[string]string)
	}
	s.Private.Beliefs[e.Key] = e.Value
}

func (e SetBelief) String() string { return fmt.Sprintf("set_belief(%s=%s)", e.Key, e.Value) }

// ClearBelief drops a private belief.
type ClearBelief struct{ Key string }

func (e ClearBelief) Apply(s *InformationState) { delete(s.Private.Beliefs, e.Key) }
func (e ClearBelief) String() string            { return "clear_belief(" + e.Key + ")" }

// PushAgenda queues a move the agent intends to perform.
type PushAgenda struct{ Move DialogueMove }

func (e PushAgenda) Apply(s *InformationState) {
	s.Private.Agenda = append(s.Private.Agenda, e.Move)
}

func (e PushAgenda) String() string { return fmt.Sprintf("push_agenda(%s)", e.Move.Type) }

// PopAgenda dequeues the front of the agenda.
type PopAgenda struct{}

func (PopAgenda) Apply(s *InformationState) {
	if len(s.Private.Agenda) == 0 {
		panic("dialogue: pop of empty agenda")
	}
	s.Private.Agenda = s.Private.Agenda[1:]
}

func (PopAgenda) String() string { return "pop_agenda" }

// RaiseIssue records a question available for later accommodation.
type RaiseIssue struct{ Question Question }

func (e RaiseIssue) Apply(s *InformationState) {
	if s.Private.Issues.Contains(e.Question.Key()) {
		return
	}
	s.Private.Issues = append(s.Private.Issues, e.Question)
}

func (e RaiseIssue) String() string { return "raise_issue(" + e.Question.Key() + ")" }

// DropIssue removes a question from the private issue set.
type DropIssue struct{ QuestionKey string }

func (e DropIssue) Apply(s *InformationState) {
	for i, q := range s.Private.Issues {
		if q.Key() == e.QuestionKey {
			s.Private.Issues = append(s.Private.Issues[:i], s.Private.Issues[i+1:]...)
			return
		}
	}
}

func (e DropIssue) String() string { return "drop_issue(" + e.QuestionKey + ")" }

// OverrideQuestion archives a question displaced from consideration.
type OverrideQuestion struct{ Question Question }

func (e OverrideQuestion) Apply(s *InformationState) {
	s.Private.OverriddenQuestions = append(s.Private.OverriddenQuestions, e.Question)
}

func (e OverrideQuestion) String() string { return "override(" + e.Question.Key() + ")" }

// SetLatestMove replaces the move under integration; used when grounding
// succeeds and a deferred move resumes.
type SetLatestMove struct{ Move *DialogueMove }

func (e SetLatestMove) Apply(s *InformationState) { s.Shared.LatestMove = e.Move }

func (e SetLatestMove) String() string {
	if e.Move == nil {
		return "clear_latest_move"
	}
	return fmt.Sprintf("set_latest_move(%s)", e.Move.Type)
}

// ConsumeLatestMove marks the move under integration as handled.
type ConsumeLatestMove struct{}

func (ConsumeLatestMove) Apply(s *InformationState) { s.Shared.LatestMove = nil }
func (ConsumeLatestMove) String() string            { return "consume_latest_move" }

// AppendMove logs a move into the shared move history.
type AppendMove struct{ Move DialogueMove }

func (e AppendMove) Apply(s *InformationState) {
	s.Shared.Moves = append(s.Shared.Moves, e.Move)
}

func (e AppendMove) String() string { return fmt.Sprintf("append_move(%s)", e.Move.Type) }

// AppendNextMove logs a pending system move.
type AppendNextMove struct{ Move DialogueMove }

func (e AppendNextMove) Apply(s *InformationState) {
	s.Shared.NextMoves = append(s.Shared.NextMoves, e.Move)
}

func (e AppendNextMove) String() string { return fmt.Sprintf("append_next_move(%s)", e.Move.Type) }

// SetNextSpeaker assigns the turn.
type SetNextSpeaker struct{ Speaker string }

func (e SetNextSpeaker) Apply(s *InformationState) { s.Control.NextSpeaker = e.Speaker }
func (e SetNextSpeaker) String() string            { return "set_next_speaker(" + e.Speaker + ")" }

// SetCandidateMove stores the interpretation under refinement.
type SetCandidateMove struct{ Move *DialogueMove }

func (e SetCandidateMove) Apply(s *InformationState) { s.Control.CandidateMove = e.Move }

func (e SetCandidateMove) String() string {
	if e.Move == nil {
		return "clear_candidate"
	}
	return fmt.Sprintf("set_candidate(%s)", e.Move.Type)
}

// SetPendingGround defers a move's integration until grounding succeeds.
type SetPendingGround struct{ Move *DialogueMove }

func (e SetPendingGround) Apply(s *InformationState) { s.Control.PendingGround = e.Move }

func (e SetPendingGround) String() string {
	if e.Move == nil {
		return "clear_pending_ground"
	}
	return fmt.Sprintf("set_pending_ground(%s)", e.Move.Type)
}

// PushAction queues a device action request.
type PushAction struct{ Request ActionRequest }

func (e PushAction) Apply(s *InformationState) {
	s.Private.Actions = append(s.Private.Actions, e.Request)
}

func (e PushAction) String() string { return "push_action(" + e.Request.Action + ")" }

// PopAction dequeues the front action request.
type PopAction struct{}

func (PopAction) Apply(s *InformationState) {
	if len(s.Private.Actions) == 0 {
		panic("dialogue: pop of empty action queue")
	}
	s.Private.Actions = s.Private.Actions[1:]
}

func (PopAction) String() string { return "pop_action" }

// SetActionResult records (or clears, with nil) the latest device outcome.
type SetActionResult struct{ Result *ActionResult }

func (e SetActionResult) Apply(s *InformationState) { s.Control.LastActionResult = e.Result }

func (e SetActionResult) String() string {
	if e.Result == nil {
		return "clear_action_result"
	}
	return fmt.Sprintf("set_action_result(%s:%t)", e.Result.Action, e.Result.Success)
}
