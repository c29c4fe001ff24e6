// Package nlu provides implementations of the interpreter boundary: a
// deterministic pattern-based dialogue-act classifier and a configurable
// mock. Callers with their own language-model pipeline can plug in any
// domain.Interpreter instead.
package nlu

import (
	"context"
	"regexp"
	"strings"

	"github.com/tsawler/prose/v3"

	"github.com/parley-dm/parley/internal/domain"
	"github.com/parley-dm/parley/internal/ontology"
)

var greetingPatterns = []string{
	`^(hi|hey|hello|yo|heya)\.?!?$`,
	`^good (morning|afternoon|evening)\.?!?$`,
}

var quitPatterns = []string{
	`^(bye|goodbye|quit|exit|later|see you)\.?!?$`,
	`^(that's all|we're done)\.?!?$`,
}

var questionPatterns = []string{
	`\?$`,
	`^(what|where|when|who|why|how|which)\b`,
	`^(is|are|do|does|did|can|could|will|would) (it|that|this|there|you|we|they)\b`,
}

var requestPatterns = []string{
	`^(please|pls)\b`,
	`^(can|could|would) you\b`,
	`^(i want to|i'd like to|i need to|let's)\b`,
	`^(book|order|buy|reserve|schedule|find|get|show|make|cancel|stop|abort)\b`,
}

var ackPatterns = []string{
	`^(yes|yeah|yep|no|nope|nah|ok|okay|sure|right|correct)\.?!?$`,
}

var nonUnderstandingPatterns = []string{
	`^(what\?+|huh\?*|sorry\?|pardon\??|come again\??)$`,
	`^(i )?(don't|didn't) (understand|get (it|that))\.?$`,
}

var (
	compiledGreeting         []*regexp.Regexp
	compiledQuit             []*regexp.Regexp
	compiledQuestion         []*regexp.Regexp
	compiledRequest          []*regexp.Regexp
	compiledAck              []*regexp.Regexp
	compiledNonUnderstanding []*regexp.Regexp
)

func init() {
	compiledGreeting = compilePatterns(greetingPatterns)
	compiledQuit = compilePatterns(quitPatterns)
	compiledQuestion = compilePatterns(questionPatterns)
	compiledRequest = compilePatterns(requestPatterns)
	compiledAck = compilePatterns(ackPatterns)
	compiledNonUnderstanding = compilePatterns(nonUnderstandingPatterns)
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	result := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err == nil {
			result = append(result, re)
		}
	}
	return result
}

func matchesAny(content string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(content) {
			return true
		}
	}
	return false
}

// PatternInterpreter classifies utterances with regex dialogue-act
// patterns and recognizes wh-answers by matching entities and sort
// individuals from the domain registry. Deterministic and offline.
type PatternInterpreter struct {
	dom *ontology.Domain
}

// NewPatternInterpreter builds an interpreter over the given domain.
func NewPatternInterpreter(dom *ontology.Domain) *PatternInterpreter {
	return &PatternInterpreter{dom: dom}
}

// Interpret maps an utterance to a dialogue move. It never fails; low
// classification certainty is reported through the move's confidence
// metadata so grounding can react to it.
func (p *PatternInterpreter) Interpret(ctx context.Context, utterance, speaker string, state *domain.InformationState) (domain.DialogueMove, error) {
	text := strings.TrimSpace(utterance)
	lower := strings.ToLower(strings.TrimRight(text, " .!"))

	switch {
	case matchesAny(lower, compiledQuit):
		return domain.NewMove(domain.MoveQuit, domain.TextContent{Text: text}, speaker).WithConfidence(0.95), nil

	case matchesAny(lower, compiledGreeting):
		return domain.NewMove(domain.MoveGreet, domain.TextContent{Text: text}, speaker).WithConfidence(0.95), nil

	case matchesAny(lower, compiledNonUnderstanding):
		content := domain.ICMContent{Level: domain.ICMLevelUnderstanding, Polarity: domain.ICMNegative}
		return domain.NewMove(domain.MoveICM, content, speaker).WithConfidence(0.9), nil

	case matchesAny(lower, compiledAck):
		// The interpretation rules type this into a polar answer.
		return domain.NewMove(domain.MoveAnswer, domain.TextContent{Text: lower}, speaker).WithConfidence(0.9), nil

	case matchesAny(lower, compiledQuestion):
		if q, conf, ok := p.recognizeQuestion(lower); ok {
			return domain.NewMove(domain.MoveAsk, domain.QuestionContent{Question: q}, speaker).WithConfidence(conf), nil
		}
		return domain.NewMove(domain.MoveAsk, domain.TextContent{Text: text}, speaker).WithConfidence(0.4), nil

	case matchesAny(lower, compiledRequest):
		return domain.NewMove(domain.MoveRequest, domain.TextContent{Text: text}, speaker).WithConfidence(0.85), nil
	}

	// Not an act pattern: try to read it as an answer to an open issue.
	if ans, conf, ok := p.recognizeAnswer(text, state); ok {
		content := domain.AnswerContent{Answer: ans}
		return domain.NewMove(domain.MoveAnswer, content, speaker).WithConfidence(conf), nil
	}

	return domain.NewMove(domain.MoveAssert, domain.TextContent{Text: text}, speaker).WithConfidence(0.6), nil
}

// recognizeQuestion matches an interrogative utterance against the
// domain's predicates by name and alias.
func (p *PatternInterpreter) recognizeQuestion(lower string) (domain.Question, float64, bool) {
	for _, pred := range p.dom.Predicates() {
		names := append([]string{pred.Name}, pred.Aliases...)
		for _, name := range names {
			spaced := strings.ReplaceAll(strings.ToLower(name), "_", " ")
			if strings.Contains(lower, spaced) {
				return domain.NewWhQuestion(pred.Name), 0.85, true
			}
		}
	}
	return nil, 0, false
}

// recognizeAnswer checks whether the utterance names an individual of a
// sort some open question ranges over. Entity extraction trims the
// utterance down to named-entity spans before sort matching, so "I'd say
// Paris" still matches the bare individual.
func (p *PatternInterpreter) recognizeAnswer(text string, state *domain.InformationState) (domain.Answer, float64, bool) {
	candidates := []string{strings.TrimRight(strings.TrimSpace(text), " .!")}
	if doc, err := prose.NewDocument(text); err == nil {
		for _, ent := range doc.Entities() {
			candidates = append(candidates, ent.Text)
		}
	}

	open := make(domain.Questions, 0, len(state.Shared.QUD)+len(state.Private.Issues))
	open = append(open, state.Shared.QUD...)
	open = append(open, state.Private.Issues...)

	for _, q := range open {
		wh, ok := q.(domain.WhQuestion)
		if !ok {
			continue
		}
		pred, ok := p.dom.Predicate(wh.Predicate)
		if !ok {
			continue
		}
		for i, candidate := range candidates {
			if p.dom.InSort(pred.Sort, candidate) {
				conf := 0.9
				if i > 0 {
					// Recovered from an entity span, not the bare
					// utterance.
					conf = 0.8
				}
				a := domain.Answer{Content: strings.ToLower(candidate), QuestionKey: q.Key(), Certainty: conf}
				return a, conf, true
			}
		}
	}

	// With exactly one open wh-question over an open sort, a short
	// utterance is taken as its answer.
	if top, ok := state.TopQUD(); ok {
		if wh, isWh := top.(domain.WhQuestion); isWh {
			if pred, known := p.dom.Predicate(wh.Predicate); known {
				if _, closed := p.dom.Sort(pred.Sort); !closed && len(strings.Fields(text)) <= 4 {
					a := domain.Answer{Content: candidates[0], QuestionKey: top.Key(), Certainty: 0.7}
					return a, 0.7, true
				}
			}
		}
	}

	return domain.Answer{}, 0, false
}
