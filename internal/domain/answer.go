package domain

// Polarity marks an answer as affirming or denying.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

func ValidPolarity(p string) bool {
	switch Polarity(p) {
	case PolarityPositive, PolarityNegative:
		return true
	}
	return false
}

// Answer is a (possibly partial) resolution of a question. QuestionKey is
// the structural key of the question it addresses; empty means a bare
// answer whose target must be accommodated against the current state.
type Answer struct {
	Content     string    `json:"content"`
	QuestionKey string    `json:"question_key,omitempty"`
	Certainty   float64   `json:"certainty"`
	Polarity    *Polarity `json:"polarity,omitempty"`
}

// NewAnswer builds a full-certainty answer to the given question.
func NewAnswer(content string, q Question) Answer {
	a := Answer{Content: content, Certainty: 1.0}
	if q != nil {
		a.QuestionKey = q.Key()
	}
	return a
}

// NewPolarAnswer builds a yes/no answer.
func NewPolarAnswer(p Polarity, q Question) Answer {
	a := Answer{Certainty: 1.0, Polarity: &p}
	if p == PolarityPositive {
		a.Content = "yes"
	} else {
		a.Content = "no"
	}
	if q != nil {
		a.QuestionKey = q.Key()
	}
	return a
}

// Bare reports whether the answer carries no explicit question reference.
func (a Answer) Bare() bool { return a.QuestionKey == "" }
