package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes a single field that failed validation.
type FieldError struct {
	Source string `json:"source"`
	Field  string `json:"field"`
	Rule   string `json:"rule"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s.%s failed on '%s'", e.Source, e.Field, e.Rule)
}

// Middleware returns a gin handler enforcing the rules against the incoming request.
// A nil or empty rule set yields a pass-through handler.
func Middleware(rules *Rules) gin.HandlerFunc {
	if rules.IsEmpty() {
		return func(c *gin.Context) { c.Next() }
	}

	// Freeze the rules so later mutation of the descriptor cannot change enforcement.
	frozen := rules.Clone()

	return func(c *gin.Context) {
		var failures []FieldError

		failures = append(failures, check("params", frozen.Params, func(k string) (any, bool) {
			for _, p := range c.Params {
				if p.Key == k {
					return p.Value, true
				}
			}
			return "", false
		})...)

		failures = append(failures, check("query", frozen.Query, func(k string) (any, bool) {
			return c.GetQuery(k)
		})...)

		if len(frozen.Payload) > 0 {
			body, err := readPayload(c)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "details": err.Error()})
				return
			}
			failures = append(failures, check("payload", frozen.Payload, func(k string) (any, bool) {
				v, ok := body[k]
				return v, ok
			})...)
		}

		if len(failures) > 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation failed", "details": failures})
			return
		}

		c.Next()
	}
}

func check(source string, schema Schema, lookup func(string) (any, bool)) []FieldError {
	if len(schema) == 0 {
		return nil
	}

	// Deterministic output order.
	fields := make([]string, 0, len(schema))
	for k := range schema {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	var failures []FieldError
	for _, field := range fields {
		value, ok := lookup(field)
		if !ok && !required(schema[field]) {
			continue
		}
		if err := validate.Var(value, schema[field]); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				failures = append(failures, FieldError{Source: source, Field: field, Rule: verrs[0].Tag()})
				continue
			}
			failures = append(failures, FieldError{Source: source, Field: field, Rule: schema[field]})
		}
	}
	return failures
}

// required reports whether the tag demands the field be present.
// Absent fields are only checked against tags that require them.
func required(tag string) bool {
	for _, rule := range strings.Split(tag, ",") {
		if rule == "required" {
			return true
		}
	}
	return false
}

// readPayload decodes the JSON body into a map and restores it so the handler can read it again.
func readPayload(c *gin.Context) (map[string]any, error) {
	if c.Request.Body == nil {
		return map[string]any{}, nil
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	body := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body, nil
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}
	return body, nil
}
