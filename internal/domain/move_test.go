package domain

import (
	"encoding/json"
	"testing"
)

func TestMoveConfidence(t *testing.T) {
	m := NewMove(MoveAssert, TextContent{Text: "the sky is blue"}, "user")
	if m.Confidence() != 1.0 {
		t.Fatalf("expected default confidence 1.0, got %f", m.Confidence())
	}

	low := m.WithConfidence(0.42)
	if low.Confidence() != 0.42 {
		t.Fatalf("expected confidence 0.42, got %f", low.Confidence())
	}
	// WithConfidence derives a new move; the original is untouched.
	if m.Confidence() != 1.0 {
		t.Fatalf("original move mutated, confidence now %f", m.Confidence())
	}
}

func TestMoveConfidenceMalformed(t *testing.T) {
	m := NewMove(MoveAssert, TextContent{Text: "x"}, "user")
	m.Metadata = map[string]any{MetadataConfidence: "very sure"}
	if m.Confidence() != 1.0 {
		t.Fatalf("malformed confidence should default to 1.0, got %f", m.Confidence())
	}
}

func TestMoveRoundTripPreservesContent(t *testing.T) {
	tests := []struct {
		name string
		move DialogueMove
	}{
		{"ask", NewMove(MoveAsk, QuestionContent{Question: WhQuestion{Predicate: "destination", Variable: "x"}}, "system")},
		{"answer", NewMove(MoveAnswer, AnswerContent{Answer: Answer{Content: "paris", QuestionKey: "wh:destination", Certainty: 0.9}}, "user")},
		{"icm", NewMove(MoveICM, ICMContent{Level: ICMLevelUnderstanding, Polarity: ICMInterrogative, About: "paris"}, "system")},
		{"perform", NewMove(MovePerform, ActionContent{Action: "book_trip", Args: map[string]string{"destination": "paris"}}, "system")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.move)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var restored DialogueMove
			if err := json.Unmarshal(data, &restored); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if restored.ID != tt.move.ID {
				t.Fatalf("id changed: %s != %s", restored.ID, tt.move.ID)
			}
			if restored.Type != tt.move.Type {
				t.Fatalf("type changed: %s != %s", restored.Type, tt.move.Type)
			}
			if ContentText(restored.Content) != ContentText(tt.move.Content) {
				t.Fatalf("content changed: %q != %q", ContentText(restored.Content), ContentText(tt.move.Content))
			}
		})
	}
}

func TestMoveNilContentRoundTrip(t *testing.T) {
	m := NewMove(MoveQuit, nil, "user")
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored DialogueMove
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if restored.Content != nil {
		t.Fatalf("expected nil content, got %#v", restored.Content)
	}
}

func TestUnmarshalContentUnknownType(t *testing.T) {
	if _, err := UnmarshalContent([]byte(`{"type":"hologram","payload":{}}`)); err == nil {
		t.Fatal("expected error for unknown content type")
	}
}
