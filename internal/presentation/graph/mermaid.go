// Package graph renders a flow's logic graph for humans: Mermaid for
// docs and chat, DOT for graphviz tooling.
package graph

import (
	"fmt"
	"strings"

	"github.com/formflow-go/formflow/pkg/domain"
)

// Overlay carries run state to highlight on the rendered graph.
type Overlay struct {
	VisitedSections []string
	CurrentSection  string
}

// Mermaid produces a flowchart of the logic graph. Node shapes follow
// kind: sections are rectangles, conditions diamonds, operators double
// circles, actions subroutines. Edges leaving a condition rule carry the
// rule as their label.
func Mermaid(flow *domain.Flow, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range flow.Nodes {
		safeID := sanitizeID(node.ID)
		opener, closer := "[", "]"
		label := node.ID

		switch node.Kind {
		case domain.KindSection:
			if node.Section != nil && node.Section.Label != "" {
				label = node.Section.Label
			}
		case domain.KindCondition:
			opener, closer = "{", "}"
			if node.Condition != nil && node.Condition.Label != "" {
				label = node.Condition.Label
			}
		case domain.KindOperator:
			opener, closer = "((", "))"
			if node.Operator != nil {
				label = fmt.Sprintf("%s/%d", node.Operator.Operator, node.Operator.Inputs)
			}
		case domain.KindAction:
			opener, closer = "[[", "]]"
			if node.Action != nil {
				label = actionLabel(node.Action.Config)
			}
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer))
	}

	for _, edge := range flow.Edges {
		safeFrom := sanitizeID(edge.Source)
		safeTo := sanitizeID(edge.Target)

		arrow := "-->"
		if label := edgeLabel(flow, edge); label != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(label))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedSections {
			safeID := sanitizeID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.CurrentSection != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeID(overlay.CurrentSection)))
		}
	}

	return sb.String()
}

// edgeLabel describes what makes the edge fire: the rule on its source
// handle, "else" for the fallback branch, or nothing for plain edges.
func edgeLabel(flow *domain.Flow, edge domain.Edge) string {
	if edge.SourceHandle == "" {
		return ""
	}
	if edge.SourceHandle == domain.HandleElse {
		return "else"
	}

	src := flow.NodeByID(edge.Source)
	if src != nil && src.Condition != nil {
		for _, rule := range src.Condition.Rules {
			if rule.ID == edge.SourceHandle {
				return describeRule(flow, rule)
			}
		}
	}
	return edge.SourceHandle
}

func describeRule(flow *domain.Flow, rule domain.Rule) string {
	fieldName := rule.FieldID
	if field, ok := flow.FieldByID(rule.FieldID); ok && field.Label != "" {
		fieldName = field.Label
	}
	switch rule.Operator {
	case domain.OpIsEmpty, domain.OpIsNotEmpty:
		return fmt.Sprintf("%s %s", fieldName, rule.Operator)
	default:
		return fmt.Sprintf("%s %s %s", fieldName, rule.Operator, rule.Value)
	}
}

func actionLabel(cfg domain.ActionConfig) string {
	switch cfg.Type {
	case domain.ActionWebhook:
		return "Webhook: " + cfg.Message
	case domain.ActionRedirect:
		return "Redirect: " + cfg.URL
	default:
		return "Action"
	}
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
