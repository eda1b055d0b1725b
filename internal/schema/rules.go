package schema

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rule is one field constraint. Implementations live in this package.
type Rule interface {
	check(v *validator.Validate, doc Payload, raw any, present bool) (any, failure)
	describe() FieldInfo
}

const msgRequired = "Required"

// MultiSelect is an array of tags. With Options set, every tag must be one of
// them. When the reserved "other" tag is selected, the string at OtherPath must
// be non-empty after trimming.
type MultiSelect struct {
	Options      []string
	Min          int
	MinMessage   string
	OtherPath    string
	OtherMessage string
}

func (r MultiSelect) check(v *validator.Validate, doc Payload, raw any, present bool) (any, failure) {
	if !present {
		return nil, message(msgRequired)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, message("Expected array")
	}
	tags := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, message("Expected array of strings")
		}
		tags = append(tags, s)
	}

	if tag := r.tag(); tag != "" {
		if err := v.Var(tags, tag); err != nil {
			return nil, r.explain(err)
		}
	}

	if r.OtherPath != "" && contains(tags, OtherTag) {
		other, _ := lookup(doc, r.OtherPath)
		text, _ := other.(string)
		if err := v.Var(strings.TrimSpace(text), "required"); err != nil {
			msg := r.OtherMessage
			if msg == "" {
				msg = "Please specify the other option"
			}
			return nil, otherMissing{path: r.OtherPath, msg: msg}
		}
	}
	return tags, nil
}

func (r MultiSelect) tag() string {
	var parts []string
	if r.Min > 0 {
		parts = append(parts, fmt.Sprintf("min=%d", r.Min))
	}
	if len(r.Options) > 0 {
		parts = append(parts, "dive", "oneof="+strings.Join(r.Options, " "))
	}
	return strings.Join(parts, ",")
}

func (r MultiSelect) explain(err error) failure {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 && ve[0].Tag() == "oneof" {
		return fail("Invalid option %q", ve[0].Value())
	}
	if r.MinMessage != "" {
		return message(r.MinMessage)
	}
	return fail("Select at least %d option(s)", r.Min)
}

func (r MultiSelect) describe() FieldInfo {
	info := FieldInfo{Kind: "multi", Options: r.Options, Other: r.OtherPath}
	if r.Min > 0 {
		n := r.Min
		info.Min = &n
	}
	return info
}

// Scale is an integer in the closed range [Min, Max].
type Scale struct {
	Min, Max int
}

func (r Scale) check(v *validator.Validate, _ Payload, raw any, present bool) (any, failure) {
	if !present {
		return nil, message(msgRequired)
	}
	n, ok := asInt(raw)
	if !ok {
		return nil, message("Expected integer")
	}
	if err := v.Var(n, fmt.Sprintf("min=%d,max=%d", r.Min, r.Max)); err != nil {
		return nil, fail("Must be between %d and %d", r.Min, r.Max)
	}
	return n, nil
}

func (r Scale) describe() FieldInfo {
	lo, hi := r.Min, r.Max
	return FieldInfo{Kind: "scale", Min: &lo, Max: &hi}
}

// Choice is a required single value from Options. There is no default.
type Choice struct {
	Options []string
	Message string
}

func (r Choice) check(v *validator.Validate, _ Payload, raw any, present bool) (any, failure) {
	s, ok := raw.(string)
	if !present || raw == nil || (ok && s == "") {
		if r.Message != "" {
			return nil, message(r.Message)
		}
		return nil, message(msgRequired)
	}
	if !ok {
		return nil, message("Expected string")
	}
	if err := v.Var(s, "oneof="+strings.Join(r.Options, " ")); err != nil {
		return nil, fail("Invalid option %q", s)
	}
	return s, nil
}

func (r Choice) describe() FieldInfo {
	return FieldInfo{Kind: "choice", Options: r.Options}
}

// Note is optional free text; absent means "".
type Note struct{}

func (Note) check(_ *validator.Validate, _ Payload, raw any, present bool) (any, failure) {
	if !present || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, message("Expected string")
	}
	return s, nil
}

func (Note) describe() FieldInfo { return FieldInfo{Kind: "note", Optional: true} }

// Flag is a required yes/no answer.
type Flag struct{}

func (Flag) check(_ *validator.Validate, _ Payload, raw any, present bool) (any, failure) {
	if !present {
		return nil, message(msgRequired)
	}
	b, ok := raw.(bool)
	if !ok {
		return nil, message("Expected boolean")
	}
	return b, nil
}

func (Flag) describe() FieldInfo { return FieldInfo{Kind: "flag"} }

// TriState accepts true, false or the single Exempt sentinel, for yes/no
// questions that may legitimately not apply today.
type TriState struct {
	Exempt string
}

func (r TriState) check(v *validator.Validate, _ Payload, raw any, present bool) (any, failure) {
	if !present {
		return nil, message(msgRequired)
	}
	switch x := raw.(type) {
	case bool:
		return x, nil
	case string:
		if err := v.Var(x, "eq="+r.Exempt); err == nil {
			return x, nil
		}
	}
	return nil, fail("Expected true, false or %q", r.Exempt)
}

func (r TriState) describe() FieldInfo { return FieldInfo{Kind: "tristate", Exempt: r.Exempt} }

func asInt(raw any) (int, bool) {
	switch n := raw.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func contains(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}
