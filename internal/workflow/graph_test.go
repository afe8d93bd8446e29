package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHXZ7/autofloww/internal/workflow"
)

func TestOrder_Empty(t *testing.T) {
	order, err := workflow.Order(workflow.Workflow{})
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestOrder_SingleNodeNoEdges(t *testing.T) {
	w := workflow.Workflow{Nodes: []workflow.Node{{ID: "a", Kind: workflow.NodeGPT}}}
	order, err := workflow.Order(w)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, order)
}

func TestOrder_RespectsDependencies(t *testing.T) {
	w := workflow.Workflow{
		Nodes: []workflow.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []workflow.Edge{{Source: "a", Target: "b"}, {Source: "a", Target: "c"}, {Source: "b", Target: "c"}},
	}
	order, err := workflow.Order(w)
	require.NoError(t, err)

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos["a"], pos["b"])
	assert.Less(t, pos["a"], pos["c"])
	assert.Less(t, pos["b"], pos["c"])
}

func TestOrder_Cycle(t *testing.T) {
	w := workflow.Workflow{
		Nodes: []workflow.Node{{ID: "a"}, {ID: "b"}},
		Edges: []workflow.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
	}
	_, err := workflow.Order(w)
	assert.ErrorIs(t, err, workflow.ErrCycle)
}

func TestOrder_SelfLoop(t *testing.T) {
	w := workflow.Workflow{
		Nodes: []workflow.Node{{ID: "a"}},
		Edges: []workflow.Edge{{Source: "a", Target: "a"}},
	}
	_, err := workflow.Order(w)
	assert.ErrorIs(t, err, workflow.ErrCycle)
}

func TestOrder_DanglingEdge(t *testing.T) {
	w := workflow.Workflow{
		Nodes: []workflow.Node{{ID: "a"}},
		Edges: []workflow.Edge{{Source: "a", Target: "ghost"}},
	}
	_, err := workflow.Order(w)
	var danglingErr *workflow.DanglingEdgeError
	require.ErrorAs(t, err, &danglingErr)
	assert.Equal(t, "ghost", danglingErr.NodeID)
}

func TestValidate_DuplicateID(t *testing.T) {
	w := workflow.Workflow{Nodes: []workflow.Node{{ID: "a"}, {ID: "a"}}}
	assert.ErrorIs(t, w.Validate(), workflow.ErrDuplicateID)
}

func TestValidate_EmptyID(t *testing.T) {
	w := workflow.Workflow{Nodes: []workflow.Node{{ID: ""}}}
	assert.ErrorIs(t, w.Validate(), workflow.ErrEmptyID)
}
