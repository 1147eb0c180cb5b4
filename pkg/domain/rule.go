package domain

// Operator enumerates the comparison operators a condition rule can use.
type Operator string

const (
	OpEquals       Operator = "equals"
	OpNotEquals    Operator = "not_equals"
	OpContains     Operator = "contains"
	OpGreaterThan  Operator = "greater_than"
	OpLessThan     Operator = "less_than"
	OpGreaterEqual Operator = "greater_equal"
	OpLessEqual    Operator = "less_equal"
	OpIsEmpty      Operator = "is_empty"
	OpIsNotEmpty   Operator = "is_not_empty"
)

// Rule compares the current answer of a field against a literal value.
// Each rule owns an outgoing handle on its condition node, named by the
// rule's ID.
//
// A rule whose FieldID points at a missing field is tolerated: it simply
// never matches.
type Rule struct {
	ID       string   `json:"id" yaml:"id" mapstructure:"id"`
	FieldID  string   `json:"fieldId" yaml:"fieldId" mapstructure:"fieldId"`
	Operator Operator `json:"operator" yaml:"operator" mapstructure:"operator"`
	Value    string   `json:"value" yaml:"value" mapstructure:"value"`
}
