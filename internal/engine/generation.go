package engine

import (
	"fmt"
	"strings"

	"github.com/parley-dm/parley/internal/domain"
	"github.com/parley-dm/parley/internal/ontology"
)

// StandardGenerators builds the template generation rules for every
// standard move type. Question surface forms come from the domain's
// predicate registry.
func StandardGenerators(dom *ontology.Domain) []GenerationRule {
	return []GenerationRule{
		{
			Name:  "gen_greet",
			Types: []domain.MoveType{domain.MoveGreet},
			Render: func(m domain.DialogueMove, s *domain.InformationState) (string, bool) {
				return "Hello! How can I help you?", true
			},
		},
		{
			Name:  "gen_quit",
			Types: []domain.MoveType{domain.MoveQuit},
			Render: func(m domain.DialogueMove, s *domain.InformationState) (string, bool) {
				return "Goodbye!", true
			},
		},
		{
			Name:  "gen_ask",
			Types: []domain.MoveType{domain.MoveAsk},
			Render: func(m domain.DialogueMove, s *domain.InformationState) (string, bool) {
				qc, ok := m.Content.(domain.QuestionContent)
				if !ok {
					return "", false
				}
				return questionText(dom, qc.Question), true
			},
		},
		{
			Name:  "gen_answer",
			Types: []domain.MoveType{domain.MoveAnswer, domain.MoveAssert},
			Render: func(m domain.DialogueMove, s *domain.InformationState) (string, bool) {
				switch c := m.Content.(type) {
				case domain.AnswerContent:
					a := c.Answer
					if strings.HasPrefix(a.QuestionKey, "wh:") {
						pred := strings.TrimPrefix(a.QuestionKey, "wh:")
						return fmt.Sprintf("The %s is %s.", strings.ReplaceAll(pred, "_", " "), a.Content), true
					}
					return a.Content + ".", true
				case domain.TextContent:
					return c.Text, true
				default:
					return "", false
				}
			},
		},
		{
			Name:  "gen_report",
			Types: []domain.MoveType{domain.MoveReport},
			Render: func(m domain.DialogueMove, s *domain.InformationState) (string, bool) {
				text := domain.ContentText(m.Content)
				if text == "" {
					return "Done.", true
				}
				return fmt.Sprintf("Okay, %s.", strings.ReplaceAll(text, "_", " ")), true
			},
		},
		{
			Name:  "gen_icm",
			Types: []domain.MoveType{domain.MoveICM},
			Render: func(m domain.DialogueMove, s *domain.InformationState) (string, bool) {
				c, ok := m.Content.(domain.ICMContent)
				if !ok {
					return "", false
				}
				return icmText(c), true
			},
		},
	}
}

func questionText(dom *ontology.Domain, q domain.Question) string {
	switch v := q.(type) {
	case domain.WhQuestion:
		return dom.WhText(v.Predicate)
	case domain.YNQuestion:
		return fmt.Sprintf("Is it the case that %s?", v.Proposition)
	case domain.AltQuestion:
		if len(v.Alternatives) == 0 {
			return dom.WhText(v.Predicate)
		}
		alts := strings.Join(v.Alternatives[:len(v.Alternatives)-1], ", ")
		last := v.Alternatives[len(v.Alternatives)-1]
		if alts == "" {
			return fmt.Sprintf("Would that be %s?", last)
		}
		return fmt.Sprintf("Would that be %s or %s?", alts, last)
	default:
		return "Could you tell me more?"
	}
}

func icmText(c domain.ICMContent) string {
	switch {
	case c.Level == domain.ICMLevelPerception && c.Polarity == domain.ICMNegative:
		return "Sorry, I didn't catch that. Could you repeat?"
	case c.Level == domain.ICMLevelUnderstanding && c.Polarity == domain.ICMInterrogative:
		if c.About != "" {
			return fmt.Sprintf("Did you mean: %s?", c.About)
		}
		return "Did I understand you correctly?"
	case c.Level == domain.ICMLevelUnderstanding && c.Polarity == domain.ICMNegative:
		return "I'm not sure I understand. Could you rephrase?"
	case c.Level == domain.ICMLevelAcceptance && c.Polarity == domain.ICMPositive:
		return "Okay."
	case c.Level == domain.ICMLevelAcceptance && c.Polarity == domain.ICMNegative:
		if c.About != "" {
			return fmt.Sprintf("Sorry, I couldn't do that: %s.", strings.ReplaceAll(c.About, "_", " "))
		}
		return "Okay, never mind."
	default:
		return "Okay."
	}
}
