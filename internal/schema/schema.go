// Package schema validates check-in payloads against declarative per-form
// schemas. A schema is a list of (path, rule) pairs; the rules cover the few
// idioms every form shares, so a new form is added as data.
package schema

import (
	"fmt"
	"strings"

	"daily-checkin/internal/entry"

	"github.com/go-playground/validator/v10"
)

// Payload is a decoded form body. Nested objects are map[string]any and numbers
// are float64, as produced by encoding/json.
type Payload = map[string]any

// OtherTag is the reserved multi-select tag that requires a free-text sibling.
const OtherTag = "other"

// ValidationError names the first field that failed and why.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// Field binds a dotted JSON path to one rule.
type Field struct {
	Path string
	Rule Rule
}

// Schema is the field list for one form type, checked in order.
type Schema struct {
	Type   entry.FormType
	Fields []Field
}

// FieldInfo describes a field for clients that render the form.
type FieldInfo struct {
	Path     string   `json:"path"`
	Kind     string   `json:"kind"`
	Options  []string `json:"options,omitempty"`
	Min      *int     `json:"min,omitempty"`
	Max      *int     `json:"max,omitempty"`
	Other    string   `json:"otherField,omitempty"`
	Exempt   string   `json:"exempt,omitempty"`
	Optional bool     `json:"optional,omitempty"`
}

// Describe lists the fields of s in declaration order.
func (s *Schema) Describe() []FieldInfo {
	out := make([]FieldInfo, 0, len(s.Fields))
	for _, f := range s.Fields {
		info := f.Rule.describe()
		info.Path = f.Path
		out = append(out, info)
	}
	return out
}

// Validate checks p and returns a normalised copy holding only declared
// fields, with absent notes filled in as "".
func (s *Schema) Validate(v *validator.Validate, p Payload) (Payload, error) {
	out := Payload{}
	for _, f := range s.Fields {
		raw, ok := lookup(p, f.Path)
		val, msg := f.Rule.check(v, p, raw, ok)
		if msg != nil {
			field := f.Path
			if o, isOther := msg.(otherMissing); isOther {
				field = o.path
			}
			return nil, &ValidationError{Field: field, Message: msg.String()}
		}
		set(out, f.Path, val)
	}
	return out, nil
}

func lookup(p Payload, path string) (any, bool) {
	var cur any = p
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func set(p Payload, path string, v any) {
	parts := strings.Split(path, ".")
	cur := p
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

// failure is a rule's error message; rules return nil on success.
type failure interface {
	String() string
}

type message string

func (m message) String() string { return string(m) }

// otherMissing reports the sibling free-text field, not the multi-select.
type otherMissing struct {
	path string
	msg  string
}

func (o otherMissing) String() string { return o.msg }

func fail(format string, args ...any) failure {
	return message(fmt.Sprintf(format, args...))
}
