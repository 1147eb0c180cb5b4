package domain

import "strings"

// Value is a single collected answer: either a scalar string or an
// ordered list of strings (checkbox multi-select).
type Value struct {
	Scalar string   `json:"scalar,omitempty" yaml:"scalar,omitempty"`
	List   []string `json:"list,omitempty" yaml:"list,omitempty"`
	IsList bool     `json:"is_list,omitempty" yaml:"is_list,omitempty"`
}

// ScalarValue wraps a plain string answer.
func ScalarValue(s string) Value {
	return Value{Scalar: s}
}

// ListValue wraps an ordered multi-select answer.
func ListValue(items ...string) Value {
	return Value{List: items, IsList: true}
}

// Joined flattens the value to a single string. Lists join with a comma,
// matching how the evaluator coerces multi-select answers to numbers.
func (v Value) Joined() string {
	if v.IsList {
		return strings.Join(v.List, ",")
	}
	return v.Scalar
}

// Contains reports membership for lists and substring presence for
// scalars.
func (v Value) Contains(s string) bool {
	if v.IsList {
		for _, item := range v.List {
			if item == s {
				return true
			}
		}
		return false
	}
	return strings.Contains(v.Scalar, s)
}

// Empty reports whether the answer is blank: zero items for a list, an
// empty trimmed string for a scalar.
func (v Value) Empty() bool {
	if v.IsList {
		return len(v.List) == 0
	}
	return strings.TrimSpace(v.Scalar) == ""
}

// Answers maps field IDs to their current values. It is written only by
// the form-filling surface; the evaluator reads it and never mutates it.
type Answers map[string]Value

// Get returns the answer for a field, reporting whether one exists.
// An absent answer is distinct from an empty one.
func (a Answers) Get(fieldID string) (Value, bool) {
	v, ok := a[fieldID]
	return v, ok
}

// Set records an answer, replacing any previous value for the field.
func (a Answers) Set(fieldID string, v Value) {
	a[fieldID] = v
}

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		if v.IsList {
			v.List = append([]string(nil), v.List...)
		}
		out[k] = v
	}
	return out
}
