package logic

import "github.com/formflow-go/formflow/pkg/domain"

// Compose folds a list of boolean inputs with a logical operator.
//
// AND over an empty list is vacuously true; OR over an empty list is
// false. NOT requires exactly one input and degrades to false on any
// other arity rather than erroring.
func Compose(op domain.LogicalOp, inputs []bool) bool {
	switch op {
	case domain.OpAnd:
		for _, v := range inputs {
			if !v {
				return false
			}
		}
		return true
	case domain.OpOr:
		for _, v := range inputs {
			if v {
				return true
			}
		}
		return false
	case domain.OpNot:
		if len(inputs) != 1 {
			return false
		}
		return !inputs[0]
	default:
		return false
	}
}
