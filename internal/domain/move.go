package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MoveType classifies a dialogue move by its communicative function.
type MoveType string

const (
	MoveAsk     MoveType = "ask"
	MoveAnswer  MoveType = "answer"
	MoveAssert  MoveType = "assert"
	MoveRequest MoveType = "request"
	MoveGreet   MoveType = "greet"
	MoveQuit    MoveType = "quit"
	MoveICM     MoveType = "icm"
	MovePerform MoveType = "perform"
	MoveReport  MoveType = "report"
)

func ValidMoveType(t string) bool {
	switch MoveType(t) {
	case MoveAsk, MoveAnswer, MoveAssert, MoveRequest, MoveGreet, MoveQuit, MoveICM, MovePerform, MoveReport:
		return true
	}
	return false
}

// MetadataConfidence is the metadata key grounding reads the recognition
// confidence from.
const MetadataConfidence = "confidence"

// DialogueMove is a single communicative act by one speaker. Moves are
// immutable once created; derive a new move instead of mutating one.
type DialogueMove struct {
	ID        uuid.UUID      `json:"id"`
	Type      MoveType       `json:"type"`
	Content   Content        `json:"-"`
	Speaker   string         `json:"speaker"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewMove builds a move with a fresh ID and the current timestamp.
func NewMove(t MoveType, content Content, speaker string) DialogueMove {
	return DialogueMove{
		ID:        uuid.New(),
		Type:      t,
		Content:   content,
		Speaker:   speaker,
		Timestamp: time.Now().UTC(),
	}
}

// WithConfidence returns a copy of the move carrying the given recognition
// confidence in its metadata.
func (m DialogueMove) WithConfidence(c float64) DialogueMove {
	meta := make(map[string]any, len(m.Metadata)+1)
	for k, v := range m.Metadata {
		meta[k] = v
	}
	meta[MetadataConfidence] = c
	m.Metadata = meta
	return m
}

// Confidence returns the recognition confidence from metadata, defaulting
// to 1.0 when absent or malformed.
func (m DialogueMove) Confidence() float64 {
	v, ok := m.Metadata[MetadataConfidence]
	if !ok {
		return 1.0
	}
	switch c := v.(type) {
	case float64:
		return c
	case float32:
		return float64(c)
	case int:
		return float64(c)
	default:
		return 1.0
	}
}

type moveJSON struct {
	ID        uuid.UUID       `json:"id"`
	Type      MoveType        `json:"type"`
	Content   json.RawMessage `json:"content"`
	Speaker   string          `json:"speaker"`
	Timestamp time.Time       `json:"timestamp"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
}

func (m DialogueMove) MarshalJSON() ([]byte, error) {
	content, err := MarshalContent(m.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(moveJSON{
		ID:        m.ID,
		Type:      m.Type,
		Content:   content,
		Speaker:   m.Speaker,
		Timestamp: m.Timestamp,
		Metadata:  m.Metadata,
	})
}

func (m *DialogueMove) UnmarshalJSON(data []byte) error {
	var raw moveJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	content, err := UnmarshalContent(raw.Content)
	if err != nil {
		return err
	}
	m.ID = raw.ID
	m.Type = raw.Type
	m.Content = content
	m.Speaker = raw.Speaker
	m.Timestamp = raw.Timestamp
	m.Metadata = raw.Metadata
	return nil
}
