// Package logic implements rule evaluation and boolean composition for
// the form logic graph. Both entry points are total functions: malformed
// rules, missing fields and non-numeric input all degrade to false, never
// to an error. A user-authored graph must not be able to crash a running
// form session.
package logic

import (
	"strconv"
	"strings"

	"github.com/formflow-go/formflow/pkg/domain"
)

// Evaluate checks one rule against the current answers.
//
// If the rule's field has no answer yet, the result is false for every
// operator, including is_empty and is_not_empty: absence is "cannot
// evaluate", not emptiness. An unanswered field never satisfies a rule.
func Evaluate(rule domain.Rule, answers domain.Answers) bool {
	value, ok := answers.Get(rule.FieldID)
	if !ok {
		return false
	}

	switch rule.Operator {
	case domain.OpEquals:
		if value.IsList {
			return value.Contains(rule.Value)
		}
		return value.Scalar == rule.Value
	case domain.OpNotEquals:
		if value.IsList {
			return !value.Contains(rule.Value)
		}
		return value.Scalar != rule.Value
	case domain.OpContains:
		return value.Contains(rule.Value)
	case domain.OpGreaterThan, domain.OpLessThan, domain.OpGreaterEqual, domain.OpLessEqual:
		return compareNumeric(rule.Operator, value.Joined(), rule.Value)
	case domain.OpIsEmpty:
		return value.Empty()
	case domain.OpIsNotEmpty:
		return !value.Empty()
	default:
		return false
	}
}

// compareNumeric coerces both sides to numbers and compares. Failed
// coercion on either side means the comparison is false, whatever the
// operator.
func compareNumeric(op domain.Operator, raw, arg string) bool {
	left, ok := toNumber(raw)
	if !ok {
		return false
	}
	right, ok := toNumber(arg)
	if !ok {
		return false
	}

	switch op {
	case domain.OpGreaterThan:
		return left > right
	case domain.OpLessThan:
		return left < right
	case domain.OpGreaterEqual:
		return left >= right
	case domain.OpLessEqual:
		return left <= right
	default:
		return false
	}
}

// toNumber mirrors the loose coercion the form editor's preview applies:
// surrounding whitespace is ignored and a blank string counts as zero.
func toNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
