package validation

import (
	"maps"
)

// Schema maps a field name to a go-playground/validator tag, e.g. {"id": "required,uuid4"}.
type Schema map[string]string

// Rules groups the schemas applied to a route's path params, query string and JSON payload.
// The zero value means no validation.
type Rules struct {
	Params  Schema `yaml:"params,omitempty"`
	Query   Schema `yaml:"query,omitempty"`
	Payload Schema `yaml:"payload,omitempty"`
}

// Clone returns a copy of the schema that shares no storage with s.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// Clone returns a deep copy of the rules.
func (r *Rules) Clone() *Rules {
	if r == nil {
		return nil
	}
	return &Rules{
		Params:  r.Params.Clone(),
		Query:   r.Query.Clone(),
		Payload: r.Payload.Clone(),
	}
}

// IsEmpty reports whether no schema is set.
func (r *Rules) IsEmpty() bool {
	return r == nil || (len(r.Params) == 0 && len(r.Query) == 0 && len(r.Payload) == 0)
}
