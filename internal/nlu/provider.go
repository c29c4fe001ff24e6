package nlu

import (
	"fmt"

	"github.com/parley-dm/parley/internal/domain"
	"github.com/parley-dm/parley/internal/ontology"
)

// NewInterpreter returns the interpreter for the configured provider.
// Valid providers: pattern, mock.
func NewInterpreter(provider string, dom *ontology.Domain) (domain.Interpreter, error) {
	switch provider {
	case "pattern", "":
		return NewPatternInterpreter(dom), nil
	case "mock":
		return NewMockInterpreter(), nil
	default:
		return nil, fmt.Errorf("unknown nlu provider %q", provider)
	}
}
