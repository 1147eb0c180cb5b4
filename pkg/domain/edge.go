package domain

import "fmt"

// HandleElse is the reserved fallback handle on condition and operator
// nodes, taken when no rule matches (or the gate evaluates false).
const HandleElse = "else"

// Edge is a directed connection between two nodes. SourceHandle picks the
// output of a multi-output source (one handle per condition rule, plus
// "else"); it is empty for single-output nodes. TargetHandle binds the
// edge to a named input of an operator node (input_0..input_{n-1}).
type Edge struct {
	ID           string `json:"id" yaml:"id" mapstructure:"id"`
	Source       string `json:"source" yaml:"source" mapstructure:"source"`
	Target       string `json:"target" yaml:"target" mapstructure:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty" mapstructure:"sourceHandle"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty" mapstructure:"targetHandle"`
}

// InputHandle names the i-th input handle of an operator node.
func InputHandle(i int) string {
	return fmt.Sprintf("input_%d", i)
}
