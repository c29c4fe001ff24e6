package engine

import (
	"strings"

	"github.com/parley-dm/parley/internal/accommodate"
	"github.com/parley-dm/parley/internal/domain"
	"github.com/parley-dm/parley/internal/grounding"
	"github.com/parley-dm/parley/internal/ontology"
)

// Rule priorities. Within a phase, higher fires first; spacing leaves
// room for domain-specific rules to slot in between.
const (
	prioGroundResume  = 120
	prioGroundReject  = 119
	prioGroundGate    = 110
	prioDialogueCtl   = 90
	prioIntegrateMove = 80
	prioAccommodate   = 75
	prioAssert        = 70
	prioInferPlan     = 60
	prioClarify       = 20
	prioFallback      = 10

	prioActionResult  = 95
	prioPlanHousekeep = 90
	prioStepResolved  = 85
	prioAnswerQUD     = 80
	prioPlanStep      = 70
)

const dispatchedBeliefPrefix = "dispatched:"

// StandardRules builds the rule library implementing the issue-based
// update semantics against the given domain registry.
func StandardRules(dom *ontology.Domain) *RuleSet {
	rs := NewRuleSet()
	rs.Add(interpretationRules()...)
	rs.Add(integrationRules(dom)...)
	rs.Add(selectionRules(dom)...)
	return rs
}

func interpretationRules() []Rule {
	return []Rule{
		{
			// "yes" / "no" free text becomes a polar answer.
			Name:     "type_polar_answer",
			Phase:    PhaseInterpretation,
			Priority: 50,
			When: func(s *domain.InformationState) bool {
				m := s.Control.CandidateMove
				if m == nil || m.Type != domain.MoveAnswer {
					return false
				}
				c, ok := m.Content.(domain.TextContent)
				if !ok {
					return false
				}
				t := strings.ToLower(strings.TrimSpace(c.Text))
				return t == "yes" || t == "no"
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				m := *s.Control.CandidateMove
				t := strings.ToLower(strings.TrimSpace(m.Content.(domain.TextContent).Text))
				p := domain.PolarityPositive
				if t == "no" {
					p = domain.PolarityNegative
				}
				var ref domain.Question
				if top, ok := s.TopQUD(); ok {
					ref = top
				}
				m.Content = domain.AnswerContent{Answer: domain.NewPolarAnswer(p, ref)}
				return []domain.Edit{domain.SetCandidateMove{Move: &m}}
			},
		},
		{
			// An elliptical answer that fits the QUD top gets its
			// question reference attached.
			Name:     "attach_question_ref",
			Phase:    PhaseInterpretation,
			Priority: 40,
			When: func(s *domain.InformationState) bool {
				m := s.Control.CandidateMove
				if m == nil || m.Type != domain.MoveAnswer {
					return false
				}
				c, ok := m.Content.(domain.AnswerContent)
				if !ok || !c.Answer.Bare() {
					return false
				}
				top, ok := s.TopQUD()
				return ok && top.ResolvesWith(c.Answer)
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				m := *s.Control.CandidateMove
				c := m.Content.(domain.AnswerContent)
				top, _ := s.TopQUD()
				c.Answer.QuestionKey = top.Key()
				m.Content = c
				return []domain.Edit{domain.SetCandidateMove{Move: &m}}
			},
		},
	}
}

func latestFromUser(s *domain.InformationState) *domain.DialogueMove {
	m := s.Shared.LatestMove
	if m == nil || m.Speaker == s.Control.AgentID {
		return nil
	}
	return m
}

func otherParty(s *domain.InformationState) string {
	if s.Control.Speaker != "" && s.Control.Speaker != s.Control.AgentID {
		return s.Control.Speaker
	}
	for i := len(s.Shared.Moves) - 1; i >= 0; i-- {
		if s.Shared.Moves[i].Speaker != s.Control.AgentID {
			return s.Shared.Moves[i].Speaker
		}
	}
	return "user"
}

// positiveAck reports whether a move acknowledges a pending grounding
// check: an affirmative answer or a positive ICM.
func positiveAck(m *domain.DialogueMove) bool {
	switch c := m.Content.(type) {
	case domain.AnswerContent:
		return c.Answer.Polarity != nil && *c.Answer.Polarity == domain.PolarityPositive
	case domain.ICMContent:
		return c.Polarity == domain.ICMPositive
	case domain.TextContent:
		t := strings.ToLower(strings.TrimSpace(c.Text))
		return t == "yes" || t == "ok" || t == "okay" || t == "right"
	default:
		return false
	}
}

func negativeAck(m *domain.DialogueMove) bool {
	switch c := m.Content.(type) {
	case domain.AnswerContent:
		return c.Answer.Polarity != nil && *c.Answer.Polarity == domain.PolarityNegative
	case domain.ICMContent:
		return c.Polarity == domain.ICMNegative
	case domain.TextContent:
		t := strings.ToLower(strings.TrimSpace(c.Text))
		return t == "no" || t == "nope"
	default:
		return false
	}
}

// resolvedInState reports whether the commitment set already settles the
// question.
func resolvedInState(s *domain.InformationState, q domain.Question) bool {
	switch v := q.(type) {
	case domain.WhQuestion:
		return s.HasCommitment(v.Predicate + " =")
	case domain.YNQuestion:
		return s.HasCommitment(v.Proposition) || s.HasCommitment("not "+v.Proposition)
	case domain.AltQuestion:
		return s.HasCommitment(v.Predicate + " =")
	default:
		return false
	}
}

// commitmentValue extracts the value side of a "pred = value" commitment.
func commitmentValue(c string) string {
	if i := strings.Index(c, " = "); i >= 0 {
		return c[i+3:]
	}
	return c
}

func integrationRules(dom *ontology.Domain) []Rule {
	return []Rule{
		{
			Name:     "resume_grounded_move",
			Phase:    PhaseIntegration,
			Priority: prioGroundResume,
			When: func(s *domain.InformationState) bool {
				m := latestFromUser(s)
				return s.Control.PendingGround != nil && m != nil && positiveAck(m)
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				// Confirmation lifts the move to full confidence so the
				// grounding gate does not park it a second time.
				confirmed := s.Control.PendingGround.WithConfidence(1.0)
				return []domain.Edit{
					domain.SetPendingGround{Move: nil},
					domain.SetLatestMove{Move: &confirmed},
				}
			},
		},
		{
			Name:     "reject_grounded_move",
			Phase:    PhaseIntegration,
			Priority: prioGroundReject,
			When: func(s *domain.InformationState) bool {
				m := latestFromUser(s)
				return s.Control.PendingGround != nil && m != nil && negativeAck(m)
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				icm := domain.NewMove(domain.MoveICM, domain.ICMContent{
					Level:    domain.ICMLevelAcceptance,
					Polarity: domain.ICMNegative,
				}, s.Control.AgentID)
				return []domain.Edit{
					domain.SetPendingGround{Move: nil},
					domain.ConsumeLatestMove{},
					domain.PushAgenda{Move: icm},
				}
			},
		},
		{
			// Low-confidence task moves are not integrated directly:
			// the move is parked and an ICM asking for confirmation (or
			// a repeat) goes out instead.
			Name:     "ground_low_confidence",
			Phase:    PhaseIntegration,
			Priority: prioGroundGate,
			When: func(s *domain.InformationState) bool {
				m := latestFromUser(s)
				if m == nil || s.Control.PendingGround != nil {
					return false
				}
				switch m.Type {
				case domain.MoveAsk, domain.MoveAnswer, domain.MoveAssert, domain.MoveRequest:
				default:
					return false
				}
				return grounding.SelectStrategy(m.Type, m.Confidence()) != grounding.Optimistic
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				m := *s.Shared.LatestMove
				strategy := grounding.SelectStrategy(m.Type, m.Confidence())
				feedback, _ := grounding.FeedbackMove(strategy, m, s.Control.AgentID)
				edits := []domain.Edit{
					domain.ConsumeLatestMove{},
					domain.PushAgenda{Move: feedback},
				}
				// Cautious moves resume once confirmed; pessimistic ones
				// were not perceived well enough to park, the user will
				// restate.
				if strategy == grounding.Cautious {
					edits = append(edits, domain.SetPendingGround{Move: &m})
				}
				return edits
			},
		},
		{
			Name:     "integrate_greet",
			Phase:    PhaseIntegration,
			Priority: prioDialogueCtl,
			When: func(s *domain.InformationState) bool {
				m := latestFromUser(s)
				return m != nil && m.Type == domain.MoveGreet
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				reply := domain.NewMove(domain.MoveGreet, domain.TextContent{Text: "hello"}, s.Control.AgentID)
				return []domain.Edit{
					domain.ConsumeLatestMove{},
					domain.PushAgenda{Move: reply},
					domain.SetNextSpeaker{Speaker: s.Control.AgentID},
				}
			},
		},
		{
			Name:     "integrate_quit",
			Phase:    PhaseIntegration,
			Priority: prioDialogueCtl,
			When: func(s *domain.InformationState) bool {
				m := latestFromUser(s)
				return m != nil && m.Type == domain.MoveQuit
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				edits := []domain.Edit{domain.ConsumeLatestMove{}}
				if s.TopPlan() != nil {
					edits = append(edits, domain.AbandonPlan{})
				}
				reply := domain.NewMove(domain.MoveQuit, domain.TextContent{Text: "goodbye"}, s.Control.AgentID)
				edits = append(edits,
					domain.PushAgenda{Move: reply},
					domain.SetNextSpeaker{Speaker: s.Control.AgentID},
				)
				return edits
			},
		},
		{
			// A user question goes on QUD. When no active plan addresses
			// it, question accommodation finds it among the private
			// issues or reinterprets it against the predicate registry.
			Name:     "integrate_ask",
			Phase:    PhaseIntegration,
			Priority: prioIntegrateMove,
			When: func(s *domain.InformationState) bool {
				m := latestFromUser(s)
				if m == nil || m.Type != domain.MoveAsk {
					return false
				}
				_, ok := m.Content.(domain.QuestionContent)
				return ok
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				q := s.Shared.LatestMove.Content.(domain.QuestionContent).Question
				edits := []domain.Edit{domain.ConsumeLatestMove{}}
				if !s.PlanAddresses(q.Key()) {
					accommodated, fromIssue := accommodate.Question(s, dom, q)
					if fromIssue {
						edits = append(edits, domain.DropIssue{QuestionKey: accommodated.Key()})
					}
					q = accommodated
				}
				edits = append(edits,
					domain.PushQUD{Question: q},
					domain.SetNextSpeaker{Speaker: s.Control.AgentID},
				)
				return edits
			},
		},
		{
			// An answer matching the QUD top resolves it: exactly one
			// pop, exactly one new commitment.
			Name:     "integrate_answer",
			Phase:    PhaseIntegration,
			Priority: prioIntegrateMove,
			When: func(s *domain.InformationState) bool {
				m := latestFromUser(s)
				if m == nil || m.Type != domain.MoveAnswer {
					return false
				}
				c, ok := m.Content.(domain.AnswerContent)
				if !ok {
					return false
				}
				top, ok := s.TopQUD()
				if !ok {
					return false
				}
				if !c.Answer.Bare() && c.Answer.QuestionKey != top.Key() {
					return false
				}
				return dom.Resolves(c.Answer, top)
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				ans := s.Shared.LatestMove.Content.(domain.AnswerContent).Answer
				top, _ := s.TopQUD()
				edits := []domain.Edit{
					domain.ConsumeLatestMove{},
					domain.PopQUD{},
					domain.AddCommitment{Proposition: dom.Commitment(top, ans)},
				}
				if s.PlanAddresses(top.Key()) {
					edits = append(edits, domain.CompleteStep{QuestionKey: top.Key()})
				}
				edits = append(edits, domain.SetNextSpeaker{Speaker: s.Control.AgentID})
				return edits
			},
		},
		{
			// Volunteered information: a bare answer that does not fit
			// the QUD top but matches a private issue accommodates that
			// issue onto QUD, and the answer rule fires next iteration.
			Name:     "accommodate_answer",
			Phase:    PhaseIntegration,
			Priority: prioAccommodate,
			When: func(s *domain.InformationState) bool {
				m := latestFromUser(s)
				if m == nil || m.Type != domain.MoveAnswer {
					return false
				}
				c, ok := m.Content.(domain.AnswerContent)
				if !ok {
					return false
				}
				_, source := accommodate.Answer(s, dom, c.Answer)
				return source == accommodate.AnswerIssue
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				ans := s.Shared.LatestMove.Content.(domain.AnswerContent).Answer
				q, _ := accommodate.Answer(s, dom, ans)
				return []domain.Edit{
					domain.DropIssue{QuestionKey: q.Key()},
					domain.PushQUD{Question: q},
				}
			},
		},
		{
			Name:     "integrate_request",
			Phase:    PhaseIntegration,
			Priority: prioIntegrateMove,
			When: func(s *domain.InformationState) bool {
				m := latestFromUser(s)
				return m != nil && m.Type == domain.MoveRequest
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				text := domain.ContentText(s.Shared.LatestMove.Content)
				res := accommodate.Task(s, text)
				edits := []domain.Edit{domain.ConsumeLatestMove{}}

				switch res.Kind {
				case accommodate.TaskCancellation:
					if s.ActivePlan() != nil {
						edits = append(edits, domain.AbandonPlan{})
					} else if _, ok := s.TopQUD(); ok {
						edits = append(edits, domain.PopQUD{})
					}
					report := domain.NewMove(domain.MoveReport, domain.TextContent{Text: res.Text}, s.Control.AgentID)
					return append(edits, domain.PushAgenda{Move: report})

				case accommodate.TaskContinuation:
					subtask := buildTask(dom, res.Text)
					ack := domain.NewMove(domain.MoveICM, domain.ICMContent{
						Level:    domain.ICMLevelAcceptance,
						Polarity: domain.ICMPositive,
						About:    res.Text,
					}, s.Control.AgentID)
					return append(edits,
						domain.AddSubtask{Plan: subtask},
						domain.PushAgenda{Move: ack},
					)

				case accommodate.TaskUnresolved:
					clarify := domain.NewMove(domain.MoveICM, domain.ICMContent{
						Level:    domain.ICMLevelUnderstanding,
						Polarity: domain.ICMNegative,
						About:    res.Text,
					}, s.Control.AgentID)
					return append(edits, domain.PushAgenda{Move: clarify})

				default: // passthrough or resolved anaphora
					if name, ok := matchPlanName(dom, res.Text); ok {
						plan, _ := dom.PlanFor(name)
						return append(edits,
							domain.PushPlan{Plan: plan},
							domain.SetNextSpeaker{Speaker: s.Control.AgentID},
						)
					}
					clarify := domain.NewMove(domain.MoveICM, domain.ICMContent{
						Level:    domain.ICMLevelUnderstanding,
						Polarity: domain.ICMNegative,
						About:    res.Text,
					}, s.Control.AgentID)
					return append(edits, domain.PushAgenda{Move: clarify})
				}
			},
		},
		{
			Name:     "integrate_assert",
			Phase:    PhaseIntegration,
			Priority: prioAssert,
			When: func(s *domain.InformationState) bool {
				m := latestFromUser(s)
				return m != nil && m.Type == domain.MoveAssert
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				text := domain.ContentText(s.Shared.LatestMove.Content)
				return []domain.Edit{
					domain.ConsumeLatestMove{},
					domain.AddCommitment{Proposition: text},
				}
			},
		},
		{
			// The user signaled non-understanding: repeat the last
			// system move.
			Name:     "integrate_icm_negative",
			Phase:    PhaseIntegration,
			Priority: prioAssert,
			When: func(s *domain.InformationState) bool {
				m := latestFromUser(s)
				if m == nil || m.Type != domain.MoveICM {
					return false
				}
				c, ok := m.Content.(domain.ICMContent)
				if !ok || c.Polarity != domain.ICMNegative {
					return false
				}
				_, found := lastSystemMove(s)
				return found
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				last, _ := lastSystemMove(s)
				return []domain.Edit{
					domain.ConsumeLatestMove{},
					domain.PushAgenda{Move: last},
				}
			},
		},
		{
			// Accommodation found no home for the answer: ask for
			// clarification instead of failing.
			Name:     "clarify_unplaceable_answer",
			Phase:    PhaseIntegration,
			Priority: prioClarify,
			When: func(s *domain.InformationState) bool {
				m := latestFromUser(s)
				if m == nil || m.Type != domain.MoveAnswer {
					return false
				}
				c, ok := m.Content.(domain.AnswerContent)
				if !ok {
					return false
				}
				_, source := accommodate.Answer(s, dom, c.Answer)
				return source == accommodate.AnswerNone
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				about := domain.ContentText(s.Shared.LatestMove.Content)
				clarify := domain.NewMove(domain.MoveICM, domain.ICMContent{
					Level:    domain.ICMLevelUnderstanding,
					Polarity: domain.ICMNegative,
					About:    about,
				}, s.Control.AgentID)
				return []domain.Edit{
					domain.ConsumeLatestMove{},
					domain.PushAgenda{Move: clarify},
				}
			},
		},
		{
			// Plan inference: an accommodated question nobody plans for
			// gets a minimal findout plan.
			Name:     "infer_plan_for_qud",
			Phase:    PhaseIntegration,
			Priority: prioInferPlan,
			When: func(s *domain.InformationState) bool {
				top, ok := s.TopQUD()
				if !ok {
					return false
				}
				return !s.PlanAddresses(top.Key()) && !resolvedInState(s, top)
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				top, _ := s.TopQUD()
				return []domain.Edit{domain.PushPlan{Plan: accommodate.InferPlan(top)}}
			},
		},
		{
			// Unclaimed moves are a benign no-op, consumed so the phase
			// quiesces.
			Name:     "consume_unhandled_move",
			Phase:    PhaseIntegration,
			Priority: prioFallback,
			When: func(s *domain.InformationState) bool {
				return s.Shared.LatestMove != nil
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				return []domain.Edit{domain.ConsumeLatestMove{}}
			},
		},
	}
}

func selectionRules(dom *ontology.Domain) []Rule {
	return []Rule{
		{
			Name:     "report_action_result",
			Phase:    PhaseSelection,
			Priority: prioActionResult,
			When: func(s *domain.InformationState) bool {
				return s.Control.LastActionResult != nil
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				res := *s.Control.LastActionResult
				edits := []domain.Edit{
					domain.SetActionResult{Result: nil},
					domain.ClearBelief{Key: dispatchedBeliefPrefix + res.Action},
				}
				if !res.Success {
					icm := domain.NewMove(domain.MoveICM, domain.ICMContent{
						Level:    domain.ICMLevelAcceptance,
						Polarity: domain.ICMNegative,
						About:    res.Action,
					}, s.Control.AgentID)
					return append(edits, domain.PushAgenda{Move: icm})
				}
				if performingLeaf(s, res.Action) {
					edits = append(edits, domain.CompleteStep{})
				}
				// A device output shaped like a proposition becomes a
				// commitment, e.g. "price = 740".
				if strings.Contains(res.Output, " = ") {
					edits = append(edits, domain.AddCommitment{Proposition: res.Output})
				}
				report := domain.NewMove(domain.MoveReport, domain.TextContent{Text: res.Action}, s.Control.AgentID)
				return append(edits, domain.PushAgenda{Move: report})
			},
		},
		{
			Name:     "pop_finished_plan",
			Phase:    PhaseSelection,
			Priority: prioPlanHousekeep,
			When: func(s *domain.InformationState) bool {
				p := s.TopPlan()
				return p != nil && p.Status != domain.PlanActive
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				return []domain.Edit{domain.PopPlan{}}
			},
		},
		{
			// A findout/raise step whose question the commitments
			// already settle is done.
			Name:     "complete_resolved_step",
			Phase:    PhaseSelection,
			Priority: prioStepResolved,
			When: func(s *domain.InformationState) bool {
				q, ok := activeQuestionStep(s)
				return ok && resolvedInState(s, q)
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				q, _ := activeQuestionStep(s)
				return []domain.Edit{domain.CompleteStep{QuestionKey: q.Key()}}
			},
		},
		{
			// Answer the top QUD question from the commitment set.
			Name:     "answer_top_qud",
			Phase:    PhaseSelection,
			Priority: prioAnswerQUD,
			When: func(s *domain.InformationState) bool {
				if len(s.Private.Agenda) > 0 {
					return false
				}
				top, ok := s.TopQUD()
				return ok && resolvedInState(s, top)
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				top, _ := s.TopQUD()
				value := answerFromCommitments(s, top)
				ans := domain.Answer{Content: value, QuestionKey: top.Key(), Certainty: 1.0}
				move := domain.NewMove(domain.MoveAnswer, domain.AnswerContent{Answer: ans}, s.Control.AgentID)
				edits := []domain.Edit{
					domain.PopQUD{},
					domain.PushAgenda{Move: move},
				}
				if s.PlanAddresses(top.Key()) {
					edits = append(edits, domain.CompleteStep{QuestionKey: top.Key()})
				}
				return edits
			},
		},
		{
			// Drive the plan: ask the next findout/raise question.
			Name:     "raise_next_question",
			Phase:    PhaseSelection,
			Priority: prioPlanStep,
			When: func(s *domain.InformationState) bool {
				if len(s.Private.Agenda) > 0 {
					return false
				}
				q, ok := activeQuestionStep(s)
				if !ok {
					return false
				}
				return !s.Shared.QUD.Contains(q.Key()) && !resolvedInState(s, q)
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				q, _ := activeQuestionStep(s)
				ask := domain.NewMove(domain.MoveAsk, domain.QuestionContent{Question: q}, s.Control.AgentID)
				return []domain.Edit{
					domain.PushQUD{Question: q},
					domain.PushAgenda{Move: ask},
					domain.SetNextSpeaker{Speaker: otherParty(s)},
				}
			},
		},
		{
			// A respond step reports an already-settled proposition and
			// otherwise steps aside.
			Name:     "respond_step",
			Phase:    PhaseSelection,
			Priority: prioPlanStep,
			When: func(s *domain.InformationState) bool {
				leaf := activeLeaf(s)
				return leaf != nil && leaf.Type == domain.PlanRespond
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				leaf := activeLeaf(s)
				qc, ok := leaf.Content.(domain.QuestionContent)
				if !ok {
					return []domain.Edit{domain.CompleteStep{}}
				}
				if !resolvedInState(s, qc.Question) {
					return []domain.Edit{domain.CompleteStep{QuestionKey: qc.Question.Key()}}
				}
				value := answerFromCommitments(s, qc.Question)
				ans := domain.Answer{Content: value, QuestionKey: qc.Question.Key(), Certainty: 1.0}
				move := domain.NewMove(domain.MoveAssert, domain.AnswerContent{Answer: ans}, s.Control.AgentID)
				return []domain.Edit{
					domain.CompleteStep{QuestionKey: qc.Question.Key()},
					domain.PushAgenda{Move: move},
				}
			},
		},
		{
			// A perform step dispatches a device action once.
			Name:     "dispatch_perform_step",
			Phase:    PhaseSelection,
			Priority: prioPlanStep,
			When: func(s *domain.InformationState) bool {
				leaf := activeLeaf(s)
				if leaf == nil || leaf.Type != domain.PlanPerform {
					return false
				}
				action := leaf.Goal()
				_, dispatched := s.Private.Beliefs[dispatchedBeliefPrefix+action]
				return !dispatched
			},
			Then: func(s *domain.InformationState) []domain.Edit {
				leaf := activeLeaf(s)
				action := leaf.Goal()
				args := make(map[string]string)
				for _, c := range s.Shared.Commitments {
					if i := strings.Index(c, " = "); i >= 0 {
						args[c[:i]] = c[i+3:]
					}
				}
				req := domain.NewActionRequest(action, args)
				return []domain.Edit{
					domain.PushAction{Request: req},
					domain.SetBelief{Key: dispatchedBeliefPrefix + action, Value: req.ID.String()},
				}
			},
		},
	}
}

// activeLeaf returns the top plan's current depth-first step.
func activeLeaf(s *domain.InformationState) *domain.Plan {
	p := s.ActivePlan()
	if p == nil {
		return nil
	}
	return p.ActiveLeaf()
}

// activeQuestionStep returns the question of the current findout/raise
// leaf, if that's what the plan is at.
func activeQuestionStep(s *domain.InformationState) (domain.Question, bool) {
	leaf := activeLeaf(s)
	if leaf == nil {
		return nil, false
	}
	if leaf.Type != domain.PlanFindout && leaf.Type != domain.PlanRaise {
		return nil, false
	}
	qc, ok := leaf.Content.(domain.QuestionContent)
	if !ok {
		return nil, false
	}
	return qc.Question, true
}

// performingLeaf reports whether the current leaf is a perform step for
// the given action.
func performingLeaf(s *domain.InformationState, action string) bool {
	leaf := activeLeaf(s)
	return leaf != nil && leaf.Type == domain.PlanPerform && leaf.Goal() == action
}

func lastSystemMove(s *domain.InformationState) (domain.DialogueMove, bool) {
	for i := len(s.Shared.Moves) - 1; i >= 0; i-- {
		m := s.Shared.Moves[i]
		if m.Speaker == s.Control.AgentID && m.Type != domain.MoveICM {
			return m, true
		}
	}
	return domain.DialogueMove{}, false
}

// answerFromCommitments extracts the committed value settling q.
func answerFromCommitments(s *domain.InformationState, q domain.Question) string {
	switch v := q.(type) {
	case domain.WhQuestion:
		if c, ok := s.CommitmentFor(v.Predicate + " ="); ok {
			return commitmentValue(c)
		}
	case domain.AltQuestion:
		if c, ok := s.CommitmentFor(v.Predicate + " ="); ok {
			return commitmentValue(c)
		}
	case domain.YNQuestion:
		if s.HasCommitment("not " + v.Proposition) {
			return "no"
		}
		if s.HasCommitment(v.Proposition) {
			return "yes"
		}
	}
	return ""
}

// matchPlanName resolves free request text to a plan template name:
// exact normalized match first, then a template whose name appears in
// the text.
func matchPlanName(dom *ontology.Domain, text string) (string, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "_")
	if dom.HasPlan(normalized) {
		return normalized, true
	}
	lower := strings.ToLower(text)
	for _, name := range dom.PlanNames() {
		spaced := strings.ReplaceAll(name, "_", " ")
		if strings.Contains(lower, spaced) || strings.Contains(lower, name) {
			return name, true
		}
	}
	return "", false
}

// buildTask makes a plan node for a continuation subtask: a template
// instantiation when one matches, a bare perform node otherwise.
func buildTask(dom *ontology.Domain, text string) *domain.Plan {
	if name, ok := matchPlanName(dom, text); ok {
		plan, _ := dom.PlanFor(name)
		return plan
	}
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "_")
	return domain.NewPlan(domain.PlanPerform, domain.ActionContent{Action: normalized})
}
