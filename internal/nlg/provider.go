package nlg

import (
	"fmt"

	"github.com/parley-dm/parley/internal/domain"
)

// NewRenderer returns the renderer for the configured provider.
// Valid providers: template, mock.
func NewRenderer(provider string) (domain.Renderer, error) {
	switch provider {
	case "template", "":
		return NewTemplateRenderer(), nil
	case "mock":
		return NewMockRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown nlg provider %q", provider)
	}
}
