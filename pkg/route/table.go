package route

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Entry is the printable form of a finalized route.
type Entry struct {
	Method  string   `yaml:"method"`
	Path    string   `yaml:"path"`
	Dynamic bool     `yaml:"dynamic,omitempty"`
	Options *Options `yaml:"options,omitempty"`
}

// Table renders the routes as a YAML document, in registration order.
func Table(handlers []*Handler) ([]byte, error) {
	entries := make([]Entry, 0, len(handlers))
	for _, h := range handlers {
		entries = append(entries, Entry{
			Method:  h.Method,
			Path:    h.Path,
			Dynamic: h.OptionsFunc != nil,
			Options: h.Options,
		})
	}

	out, err := yaml.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to render route table: %w", err)
	}
	return out, nil
}
