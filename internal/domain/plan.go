package domain

import "encoding/json"

// PlanType classifies what executing a plan node means.
type PlanType string

const (
	PlanFindout PlanType = "findout"
	PlanRaise   PlanType = "raise"
	PlanRespond PlanType = "respond"
	PlanPerform PlanType = "perform"
)

func ValidPlanType(t string) bool {
	switch PlanType(t) {
	case PlanFindout, PlanRaise, PlanRespond, PlanPerform:
		return true
	}
	return false
}

// PlanStatus is the lifecycle state of a plan node.
type PlanStatus string

const (
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
	PlanAbandoned PlanStatus = "abandoned"
)

// Plan is a node in an agent's task decomposition. A plan exclusively owns
// its subplans; they are processed depth-first in order, and a node with
// subplans but no remaining active one transitions to completed.
type Plan struct {
	Type     PlanType   `json:"type"`
	Content  Content    `json:"-"`
	Status   PlanStatus `json:"status"`
	Subplans []*Plan    `json:"subplans,omitempty"`
}

// NewPlan builds an active plan node.
func NewPlan(t PlanType, content Content, subplans ...*Plan) *Plan {
	return &Plan{Type: t, Content: content, Status: PlanActive, Subplans: subplans}
}

// Findout builds the minimal plan addressing a question.
func Findout(q Question) *Plan {
	return NewPlan(PlanFindout, QuestionContent{Question: q})
}

// Complete marks this node completed.
func (p *Plan) Complete() { p.Status = PlanCompleted }

// Abandon marks this node and every active descendant abandoned.
func (p *Plan) Abandon() {
	p.Status = PlanAbandoned
	for _, sp := range p.Subplans {
		if sp.Status == PlanActive {
			sp.Abandon()
		}
	}
}

// ActiveLeaf returns the next executable step: the first active node with
// no active subplans, found depth-first. Nil when the plan is finished.
func (p *Plan) ActiveLeaf() *Plan {
	if p.Status != PlanActive {
		return nil
	}
	for _, sp := range p.Subplans {
		if leaf := sp.ActiveLeaf(); leaf != nil {
			return leaf
		}
	}
	if len(p.Subplans) == 0 {
		return p
	}
	return nil
}

// Refresh completes every active node whose subplans are all finished,
// bottom-up. Call after completing a step so parents cascade.
func (p *Plan) Refresh() {
	if p.Status != PlanActive {
		return
	}
	if len(p.Subplans) == 0 {
		return
	}
	for _, sp := range p.Subplans {
		sp.Refresh()
	}
	for _, sp := range p.Subplans {
		if sp.Status == PlanActive {
			return
		}
	}
	p.Status = PlanCompleted
}

// AddSubplan appends a subtask to this node.
func (p *Plan) AddSubplan(sp *Plan) { p.Subplans = append(p.Subplans, sp) }

// FindStep returns the first node, depth-first, whose content is a
// question with the given key.
func (p *Plan) FindStep(questionKey string) *Plan {
	if qc, ok := p.Content.(QuestionContent); ok && qc.Question.Key() == questionKey {
		return p
	}
	for _, sp := range p.Subplans {
		if found := sp.FindStep(questionKey); found != nil {
			return found
		}
	}
	return nil
}

// Goal returns a flat description of what the plan is for.
func (p *Plan) Goal() string { return ContentText(p.Content) }

type planJSON struct {
	Type     PlanType        `json:"type"`
	Content  json.RawMessage `json:"content"`
	Status   PlanStatus      `json:"status"`
	Subplans []*Plan         `json:"subplans,omitempty"`
}

func (p *Plan) MarshalJSON() ([]byte, error) {
	content, err := MarshalContent(p.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(planJSON{
		Type:     p.Type,
		Content:  content,
		Status:   p.Status,
		Subplans: p.Subplans,
	})
}

func (p *Plan) UnmarshalJSON(data []byte) error {
	var raw planJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	content, err := UnmarshalContent(raw.Content)
	if err != nil {
		return err
	}
	p.Type = raw.Type
	p.Content = content
	p.Status = raw.Status
	p.Subplans = raw.Subplans
	return nil
}
