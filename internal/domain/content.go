package domain

import (
	"encoding/json"
	"fmt"
)

// ContentType discriminates the Content variants in serialized form.
type ContentType string

const (
	ContentTypeQuestion ContentType = "question"
	ContentTypeAnswer   ContentType = "answer"
	ContentTypeText     ContentType = "text"
	ContentTypeAction   ContentType = "action"
	ContentTypeICM      ContentType = "icm"
)

// Content is the sealed payload type carried by dialogue moves and plans.
// The closed set of variants lets rule effects and generation dispatch
// exhaustively instead of inspecting runtime types.
type Content interface {
	ContentType() ContentType
	sealedContent()
}

// QuestionContent wraps a Question raised or asked about.
type QuestionContent struct {
	Question Question
}

func (QuestionContent) ContentType() ContentType { return ContentTypeQuestion }
func (QuestionContent) sealedContent()           {}

func (c QuestionContent) MarshalJSON() ([]byte, error) {
	return MarshalQuestion(c.Question)
}

func (c *QuestionContent) UnmarshalJSON(data []byte) error {
	q, err := UnmarshalQuestion(data)
	if err != nil {
		return err
	}
	c.Question = q
	return nil
}

// AnswerContent wraps an Answer.
type AnswerContent struct {
	Answer Answer
}

func (AnswerContent) ContentType() ContentType { return ContentTypeAnswer }
func (AnswerContent) sealedContent()           {}

func (c AnswerContent) MarshalJSON() ([]byte, error)  { return json.Marshal(c.Answer) }
func (c *AnswerContent) UnmarshalJSON(b []byte) error { return json.Unmarshal(b, &c.Answer) }

// TextContent is free text: greetings, raw requests, assertions.
type TextContent struct {
	Text string `json:"text"`
}

func (TextContent) ContentType() ContentType { return ContentTypeText }
func (TextContent) sealedContent()           {}

// ActionContent references a device action.
type ActionContent struct {
	Action string            `json:"action"`
	Args   map[string]string `json:"args,omitempty"`
}

func (ActionContent) ContentType() ContentType { return ContentTypeAction }
func (ActionContent) sealedContent()           {}

// ICMLevel is the action level an interactive communication management
// move reports on: did I perceive you, did I understand you, do I accept it.
type ICMLevel string

const (
	ICMLevelPerception    ICMLevel = "perception"
	ICMLevelUnderstanding ICMLevel = "understanding"
	ICMLevelAcceptance    ICMLevel = "acceptance"
)

func ValidICMLevel(l string) bool {
	switch ICMLevel(l) {
	case ICMLevelPerception, ICMLevelUnderstanding, ICMLevelAcceptance:
		return true
	}
	return false
}

// ICMPolarity is the feedback polarity of an ICM move. Interrogative is
// the neutral "did you mean X?" check.
type ICMPolarity string

const (
	ICMPositive      ICMPolarity = "positive"
	ICMNegative      ICMPolarity = "negative"
	ICMInterrogative ICMPolarity = "interrogative"
)

// ICMContent is grounding feedback about a prior move rather than task
// content.
type ICMContent struct {
	Level    ICMLevel    `json:"level"`
	Polarity ICMPolarity `json:"polarity"`
	// About restates the content being grounded, when known.
	About string `json:"about,omitempty"`
}

func (ICMContent) ContentType() ContentType { return ContentTypeICM }
func (ICMContent) sealedContent()           {}

type contentEnvelope struct {
	Type    ContentType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalContent encodes a Content value as a tagged-union envelope.
func MarshalContent(c Content) ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(contentEnvelope{Type: c.ContentType(), Payload: payload})
}

// UnmarshalContent decodes a tagged-union envelope back into the concrete
// Content variant.
func UnmarshalContent(data []byte) (Content, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env contentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Type {
	case ContentTypeQuestion:
		var c QuestionContent
		if err := json.Unmarshal(env.Payload, &c); err != nil {
			return nil, err
		}
		return c, nil
	case ContentTypeAnswer:
		var c AnswerContent
		if err := json.Unmarshal(env.Payload, &c); err != nil {
			return nil, err
		}
		return c, nil
	case ContentTypeText:
		var c TextContent
		if err := json.Unmarshal(env.Payload, &c); err != nil {
			return nil, err
		}
		return c, nil
	case ContentTypeAction:
		var c ActionContent
		if err := json.Unmarshal(env.Payload, &c); err != nil {
			return nil, err
		}
		return c, nil
	case ContentTypeICM:
		var c ICMContent
		if err := json.Unmarshal(env.Payload, &c); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown content type %q", env.Type)
	}
}

// ContentText returns a flat textual rendering of any content variant,
// used for anaphora resolution and logging.
func ContentText(c Content) string {
	switch v := c.(type) {
	case QuestionContent:
		return v.Question.Key()
	case AnswerContent:
		return v.Answer.Content
	case TextContent:
		return v.Text
	case ActionContent:
		return v.Action
	case ICMContent:
		return fmt.Sprintf("icm:%s*%s", v.Level, v.Polarity)
	case nil:
		return ""
	default:
		return ""
	}
}
