package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QuestionKind discriminates the Question variants in serialized form.
type QuestionKind string

const (
	QuestionKindWh  QuestionKind = "wh"
	QuestionKindYN  QuestionKind = "yn"
	QuestionKindAlt QuestionKind = "alt"
)

func ValidQuestionKind(k string) bool {
	switch QuestionKind(k) {
	case QuestionKindWh, QuestionKindYN, QuestionKindAlt:
		return true
	}
	return false
}

// Question is an issue under discussion. Matching between answers and
// questions is always by the stable structural key returned by Key, never
// by instance identity: the key survives serialization, pointers don't.
type Question interface {
	Kind() QuestionKind
	// Key returns a stable structural key identifying this question.
	Key() string
	// ResolvesWith reports whether the answer semantically resolves this
	// question. Pure and side-effect free; sortal checks against a domain
	// live in the ontology, not here.
	ResolvesWith(a Answer) bool
}

// WhQuestion asks for the value of a predicate, e.g. ?x.destination(x).
type WhQuestion struct {
	Predicate string `json:"predicate"`
	Variable  string `json:"variable"`
}

func NewWhQuestion(predicate string) WhQuestion {
	return WhQuestion{Predicate: predicate, Variable: "x"}
}

func (q WhQuestion) Kind() QuestionKind { return QuestionKindWh }

func (q WhQuestion) Key() string { return "wh:" + q.Predicate }

func (q WhQuestion) ResolvesWith(a Answer) bool {
	if a.QuestionKey != "" {
		return a.QuestionKey == q.Key()
	}
	// A bare answer resolves a wh-question when it supplies an individual,
	// not just a polarity.
	return strings.TrimSpace(a.Content) != "" && a.Polarity == nil
}

// YNQuestion asks whether a proposition holds.
type YNQuestion struct {
	Proposition string `json:"proposition"`
}

func (q YNQuestion) Kind() QuestionKind { return QuestionKindYN }

func (q YNQuestion) Key() string { return "yn:" + q.Proposition }

func (q YNQuestion) ResolvesWith(a Answer) bool {
	if a.QuestionKey != "" {
		return a.QuestionKey == q.Key()
	}
	return a.Polarity != nil
}

// AltQuestion asks which of a closed set of alternatives holds.
type AltQuestion struct {
	Predicate    string   `json:"predicate"`
	Alternatives []string `json:"alternatives"`
}

func (q AltQuestion) Kind() QuestionKind { return QuestionKindAlt }

func (q AltQuestion) Key() string {
	return "alt:" + q.Predicate + ":" + strings.Join(q.Alternatives, "|")
}

func (q AltQuestion) ResolvesWith(a Answer) bool {
	if a.QuestionKey != "" {
		return a.QuestionKey == q.Key()
	}
	c := strings.ToLower(strings.TrimSpace(a.Content))
	for _, alt := range q.Alternatives {
		if strings.ToLower(alt) == c {
			return true
		}
	}
	return false
}

type questionEnvelope struct {
	Kind    QuestionKind    `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalQuestion encodes a Question as a tagged-union envelope.
func MarshalQuestion(q Question) ([]byte, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionEnvelope{Kind: q.Kind(), Payload: payload})
}

// UnmarshalQuestion decodes a tagged-union envelope back into the concrete
// Question variant.
func UnmarshalQuestion(data []byte) (Question, error) {
	var env questionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case QuestionKindWh:
		var q WhQuestion
		if err := json.Unmarshal(env.Payload, &q); err != nil {
			return nil, err
		}
		return q, nil
	case QuestionKindYN:
		var q YNQuestion
		if err := json.Unmarshal(env.Payload, &q); err != nil {
			return nil, err
		}
		return q, nil
	case QuestionKindAlt:
		var q AltQuestion
		if err := json.Unmarshal(env.Payload, &q); err != nil {
			return nil, err
		}
		return q, nil
	default:
		return nil, fmt.Errorf("unknown question kind %q", env.Kind)
	}
}

// Questions is a serializable ordered collection of Question values, used
// for the QUD stack and the private issue set.
type Questions []Question

func (qs Questions) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, len(qs))
	for i, q := range qs {
		data, err := MarshalQuestion(q)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return json.Marshal(out)
}

func (qs *Questions) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Questions, len(raw))
	for i, r := range raw {
		q, err := UnmarshalQuestion(r)
		if err != nil {
			return err
		}
		out[i] = q
	}
	*qs = out
	return nil
}

// Contains reports whether a question with the given key is present.
func (qs Questions) Contains(key string) bool {
	for _, q := range qs {
		if q.Key() == key {
			return true
		}
	}
	return false
}
