package workflow

import (
	"errors"
	"fmt"
)

// ErrCycle is returned when the workflow's edges describe a cyclic graph.
var ErrCycle = errors.New("Cycle detected in workflow")

// DanglingEdgeError is returned when an edge references a node id that does
// not exist in the workflow.
type DanglingEdgeError struct {
	EdgeID string
	NodeID string
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("edge %q references missing node %q", e.EdgeID, e.NodeID)
}

// Order computes a topological order over the workflow's nodes using
// Kahn's algorithm. An empty workflow yields an empty, non-error order.
// Any self-loop or strongly-connected component of size > 1 is reported as
// ErrCycle; any edge whose endpoint is missing is reported as a
// *DanglingEdgeError. Tie-break among nodes with no path between them is
// unspecified — callers must not depend on a particular order there.
func Order(w Workflow) ([]string, error) {
	inDegree := make(map[string]int, len(w.Nodes))
	adj := make(map[string][]string, len(w.Nodes))
	for _, n := range w.Nodes {
		inDegree[n.ID] = 0
		adj[n.ID] = nil
	}

	for _, e := range w.Edges {
		if _, ok := inDegree[e.Source]; !ok {
			return nil, &DanglingEdgeError{EdgeID: e.ID, NodeID: e.Source}
		}
		if _, ok := inDegree[e.Target]; !ok {
			return nil, &DanglingEdgeError{EdgeID: e.ID, NodeID: e.Target}
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		inDegree[e.Target]++
	}

	queue := make([]string, 0, len(w.Nodes))
	for _, n := range w.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(w.Nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, next := range adj[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(w.Nodes) {
		return nil, ErrCycle
	}
	return order, nil
}
