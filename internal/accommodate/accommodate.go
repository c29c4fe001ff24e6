// Package accommodate resolves input that cannot be integrated directly:
// questions nobody raised, requests that lean on context anaphorically,
// and bare answers whose target question is implicit. All resolution is
// deterministic and symbolic against the current information state and
// the domain registry; when no referent is found the original content is
// returned unresolved so a later rule can ask for clarification.
package accommodate

import (
	"regexp"
	"strings"

	"github.com/parley-dm/parley/internal/domain"
	"github.com/parley-dm/parley/internal/ontology"
)

var (
	anaphorRe      = regexp.MustCompile(`(?i)\b(that|it|this|them)\b`)
	continuationRe = regexp.MustCompile(`(?i)^\s*(also|and then|and|then)\b`)
	cancelRe       = regexp.MustCompile(`(?i)\b(cancel|stop|abort)\b`)
)

// Question accommodates an asked question that no active plan addresses.
// It first searches the private issue set for a question with the same
// key; failing that it tries to reinterpret the question against the
// domain's predicate registry (the asked predicate may be an alias).
// Returns the question to push and whether it came from the issue set.
func Question(st *domain.InformationState, dom *ontology.Domain, q domain.Question) (domain.Question, bool) {
	for _, issue := range st.Private.Issues {
		if issue.Key() == q.Key() {
			return issue, true
		}
	}
	if wh, ok := q.(domain.WhQuestion); ok {
		if inferred, ok := dom.QuestionFor(wh.Predicate); ok {
			return inferred, false
		}
	}
	return q, false
}

// TaskKind labels how a request's text was resolved.
type TaskKind string

const (
	// TaskPassthrough means no contextual device applied; the text is
	// unchanged.
	TaskPassthrough TaskKind = "passthrough"
	// TaskAnaphora means a pronoun was substituted with a referent.
	TaskAnaphora TaskKind = "anaphora"
	// TaskContinuation means a connective attached the remainder as a
	// subtask of the active plan.
	TaskContinuation TaskKind = "continuation"
	// TaskCancellation means an abbreviated cancellation was expanded
	// with its target.
	TaskCancellation TaskKind = "cancellation"
	// TaskUnresolved means a contextual device was detected but no
	// referent was found; the original text is returned as-is.
	TaskUnresolved TaskKind = "unresolved"
)

// TaskResolution is the outcome of task accommodation.
type TaskResolution struct {
	Kind TaskKind
	// Text is the resolved request text.
	Text string
	// Target is the cancellation target or continuation parent goal,
	// when applicable.
	Target string
}

// Task resolves an underspecified request. The checks run in a fixed
// order; each later check assumes the earlier ones did not apply, so the
// order must not change.
func Task(st *domain.InformationState, text string) TaskResolution {
	trimmed := strings.TrimSpace(text)

	// 1. Anaphoric pronouns: substitute the most recent assert/answer
	// content, else the active plan's goal.
	if loc := anaphorRe.FindStringIndex(trimmed); loc != nil {
		if referent, ok := anaphorReferent(st); ok {
			resolved := anaphorRe.ReplaceAllString(trimmed, referent)
			return TaskResolution{Kind: TaskAnaphora, Text: resolved, Target: referent}
		}
		return TaskResolution{Kind: TaskUnresolved, Text: trimmed}
	}

	// 2. Continuation connectives: the remainder becomes a subtask of
	// the active plan.
	if loc := continuationRe.FindStringIndex(trimmed); loc != nil {
		remainder := strings.TrimSpace(trimmed[loc[1]:])
		if plan := st.ActivePlan(); plan != nil && remainder != "" {
			return TaskResolution{Kind: TaskContinuation, Text: remainder, Target: plan.Goal()}
		}
		return TaskResolution{Kind: TaskUnresolved, Text: trimmed}
	}

	// 3. Abbreviated cancellation: resolve the target from the active
	// plan, else the current QUD top, in that order.
	if cancelRe.MatchString(trimmed) {
		if plan := st.ActivePlan(); plan != nil {
			return TaskResolution{Kind: TaskCancellation, Text: "cancel " + plan.Goal(), Target: plan.Goal()}
		}
		if _, ok := st.TopQUD(); ok {
			return TaskResolution{Kind: TaskCancellation, Text: "cancel current question", Target: "current question"}
		}
		return TaskResolution{Kind: TaskUnresolved, Text: trimmed}
	}

	// 4. Nothing contextual: pass through unchanged.
	return TaskResolution{Kind: TaskPassthrough, Text: trimmed}
}

// anaphorReferent finds what a pronoun points at: the content of the most
// recent assert or answer move, else the active plan's goal.
func anaphorReferent(st *domain.InformationState) (string, bool) {
	if m, ok := st.LastMoveOfType(domain.MoveAssert, domain.MoveAnswer); ok {
		if text := domain.ContentText(m.Content); text != "" {
			return text, true
		}
	}
	if plan := st.ActivePlan(); plan != nil {
		return plan.Goal(), true
	}
	return "", false
}

// AnswerSource labels where answer accommodation found a target question.
type AnswerSource string

const (
	// AnswerQUDTop means the answer resolves the current QUD top.
	AnswerQUDTop AnswerSource = "qud_top"
	// AnswerIssue means the answer was volunteered information matching
	// a private issue not yet on QUD.
	AnswerIssue AnswerSource = "issue"
	// AnswerNone means no question accepts the answer.
	AnswerNone AnswerSource = "none"
)

// Answer resolves a bare or elliptical answer against the current state:
// the QUD top is tried first using the domain's compatibility test, then
// the most recently raised private issue (volunteered information).
func Answer(st *domain.InformationState, dom *ontology.Domain, a domain.Answer) (domain.Question, AnswerSource) {
	if top, ok := st.TopQUD(); ok {
		if dom.Resolves(a, top) {
			return top, AnswerQUDTop
		}
	}
	for i := len(st.Private.Issues) - 1; i >= 0; i-- {
		issue := st.Private.Issues[i]
		if dom.Resolves(a, issue) {
			return issue, AnswerIssue
		}
	}
	return nil, AnswerNone
}

// InferPlan synthesizes the minimal plan addressing an accommodated
// question: a bare findout wrapping it.
func InferPlan(q domain.Question) *domain.Plan {
	return domain.Findout(q)
}
