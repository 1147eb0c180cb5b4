package graph

import (
	"fmt"

	"github.com/awalterschulze/gographviz"

	"github.com/formflow-go/formflow/pkg/domain"
)

const dotGraphName = "formflow"

// DOT renders the logic graph in graphviz syntax, one shape per node
// kind and rule descriptions on condition edges.
func DOT(flow *domain.Flow) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(dotGraphName); err != nil {
		return "", fmt.Errorf("failed to initialize graph: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return "", fmt.Errorf("failed to set graph direction: %w", err)
	}

	for _, node := range flow.Nodes {
		attrs := map[string]string{
			"label": quote(dotNodeLabel(node)),
			"shape": dotShape(node.Kind),
		}
		if err := g.AddNode(dotGraphName, quote(node.ID), attrs); err != nil {
			return "", fmt.Errorf("failed to add node %q: %w", node.ID, err)
		}
	}

	for _, edge := range flow.Edges {
		attrs := map[string]string{}
		if label := edgeLabel(flow, edge); label != "" {
			attrs["label"] = quote(label)
		}
		if err := g.AddEdge(quote(edge.Source), quote(edge.Target), true, attrs); err != nil {
			return "", fmt.Errorf("failed to add edge %q: %w", edge.ID, err)
		}
	}

	return g.String(), nil
}

func dotShape(kind domain.NodeKind) string {
	switch kind {
	case domain.KindCondition:
		return "diamond"
	case domain.KindOperator:
		return "doublecircle"
	case domain.KindAction:
		return "cds"
	default:
		return "box"
	}
}

func dotNodeLabel(node domain.Node) string {
	switch node.Kind {
	case domain.KindSection:
		if node.Section != nil && node.Section.Label != "" {
			return node.Section.Label
		}
	case domain.KindCondition:
		if node.Condition != nil && node.Condition.Label != "" {
			return node.Condition.Label
		}
	case domain.KindOperator:
		if node.Operator != nil {
			return fmt.Sprintf("%s/%d", node.Operator.Operator, node.Operator.Inputs)
		}
	case domain.KindAction:
		if node.Action != nil {
			return actionLabel(node.Action.Config)
		}
	}
	return node.ID
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
