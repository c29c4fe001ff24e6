package domain

import (
	"encoding/json"
	"fmt"
)

// EncodeState serializes a full information state. Every entity
// round-trips losslessly, so snapshots can be inspected and restored.
func EncodeState(s *InformationState) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// DecodeState restores an information state from its serialized form.
func DecodeState(data []byte) (*InformationState, error) {
	var s InformationState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if s.Private.Beliefs == nil {
		s.Private.Beliefs = make(map[string]string)
	}
	return &s, nil
}

// Clone returns a structurally independent deep copy of the state.
func (s *InformationState) Clone() *InformationState {
	data, err := EncodeState(s)
	if err != nil {
		panic(fmt.Sprintf("dialogue: clone failed to encode: %v", err))
	}
	c, err := DecodeState(data)
	if err != nil {
		panic(fmt.Sprintf("dialogue: clone failed to decode: %v", err))
	}
	return c
}
