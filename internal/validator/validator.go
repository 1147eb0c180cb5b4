// Package validator checks a flow's logic graph for consistency before
// it is simulated: dangling edges, stale rule handles, and nodes no run
// can ever reach.
package validator

import (
	"fmt"
	"strings"

	"github.com/formflow-go/formflow/pkg/domain"
)

// ValidateFlow crawls the flow and returns an error describing every
// issue found, or nil when the graph is consistent.
func ValidateFlow(flow *domain.Flow) error {
	issues := Issues(flow)
	if len(issues) > 0 {
		return fmt.Errorf("found %d issues:\n- %s", len(issues), strings.Join(issues, "\n- "))
	}
	return nil
}

// Issues collects every consistency problem in the flow. The traversal
// engine tolerates all of them at runtime (they resolve to dead ends),
// so these are authoring-time diagnostics, not load failures.
func Issues(flow *domain.Flow) []string {
	var issues []string

	nodeIDs := make(map[string]bool, len(flow.Nodes))
	for _, n := range flow.Nodes {
		nodeIDs[n.ID] = true
	}

	// Edge endpoints and handles
	for _, e := range flow.Edges {
		if !nodeIDs[e.Source] {
			issues = append(issues, fmt.Sprintf("edge '%s' leaves unknown node '%s'", e.ID, e.Source))
			continue
		}
		if !nodeIDs[e.Target] {
			issues = append(issues, fmt.Sprintf("edge '%s' targets unknown node '%s'", e.ID, e.Target))
		}
		if msg := checkSourceHandle(flow, e); msg != "" {
			issues = append(issues, msg)
		}
		if msg := checkTargetHandle(flow, e); msg != "" {
			issues = append(issues, msg)
		}
	}

	// Rules referencing fields that no longer exist
	for _, n := range flow.Nodes {
		if n.Kind != domain.KindCondition || n.Condition == nil {
			continue
		}
		for _, r := range n.Condition.Rules {
			if _, ok := flow.FieldByID(r.FieldID); !ok {
				issues = append(issues, fmt.Sprintf("rule '%s' on node '%s' references unknown field '%s'", r.ID, n.ID, r.FieldID))
			}
		}
	}

	issues = append(issues, unreachable(flow, nodeIDs)...)
	return issues
}

// checkSourceHandle verifies the edge leaves an output the source node
// actually has.
func checkSourceHandle(flow *domain.Flow, e domain.Edge) string {
	if e.SourceHandle == "" || e.SourceHandle == domain.HandleElse {
		return ""
	}
	node := flow.NodeByID(e.Source)
	if node == nil || node.Kind != domain.KindCondition || node.Condition == nil {
		return ""
	}
	for _, r := range node.Condition.Rules {
		if r.ID == e.SourceHandle {
			return ""
		}
	}
	return fmt.Sprintf("edge '%s' leaves node '%s' on handle '%s' but no such rule exists", e.ID, e.Source, e.SourceHandle)
}

// checkTargetHandle verifies input-handle edges land on a declared
// operator input.
func checkTargetHandle(flow *domain.Flow, e domain.Edge) string {
	if e.TargetHandle == "" {
		return ""
	}
	node := flow.NodeByID(e.Target)
	if node == nil || node.Kind != domain.KindOperator || node.Operator == nil {
		return ""
	}
	for i := 0; i < node.Operator.Inputs; i++ {
		if e.TargetHandle == domain.InputHandle(i) {
			return ""
		}
	}
	return fmt.Sprintf("edge '%s' targets input '%s' of node '%s' which only declares %d inputs", e.ID, e.TargetHandle, e.Target, node.Operator.Inputs)
}

// unreachable reports graph nodes no traversal can visit. Sections are
// excluded: positional fallback can reach any of them.
func unreachable(flow *domain.Flow, nodeIDs map[string]bool) []string {
	visited := make(map[string]bool, len(nodeIDs))
	var queue []string
	for _, n := range flow.Nodes {
		if n.Kind == domain.KindSection {
			queue = append(queue, n.ID)
			visited[n.ID] = true
		}
	}
	// Operator inputs pull their sources in against edge direction, so
	// reachability follows incoming edges through operator nodes too.
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, e := range flow.EdgesFrom(id) {
			if nodeIDs[e.Target] && !visited[e.Target] {
				visited[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
		node := flow.NodeByID(id)
		if node != nil && node.Kind == domain.KindOperator {
			for _, e := range flow.EdgesInto(id) {
				if nodeIDs[e.Source] && !visited[e.Source] {
					visited[e.Source] = true
					queue = append(queue, e.Source)
				}
			}
		}
	}

	var issues []string
	for _, n := range flow.Nodes {
		if n.Kind != domain.KindSection && !visited[n.ID] {
			issues = append(issues, fmt.Sprintf("node '%s' is unreachable", n.ID))
		}
	}
	return issues
}
