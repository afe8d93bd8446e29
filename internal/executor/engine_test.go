package executor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

const kindUpper workflow.NodeKind = "gpt"
const kindEcho workflow.NodeKind = "webhook"
const kindBoom workflow.NodeKind = "image_generation"

func upperExecutor() executor.ExecutorFunc {
	return func(ctx context.Context, req executor.Request) adapter.Result {
		var in string
		for _, r := range req.Predecessors {
			in = r.String()
		}
		if in == "" {
			in = "seed"
		}
		return adapter.AIText(in + "-ai")
	}
}

func echoExecutor() executor.ExecutorFunc {
	return func(ctx context.Context, req executor.Request) adapter.Result {
		var parts string
		for _, r := range req.Predecessors {
			parts += r.String()
		}
		return adapter.Notification(parts)
	}
}

func boomExecutor() executor.ExecutorFunc {
	return func(ctx context.Context, req executor.Request) adapter.Result {
		return adapter.Error("Error: prompt is required")
	}
}

func newTestEngine() *executor.Engine {
	reg := executor.NewRegistry()
	reg.Register(kindUpper, upperExecutor())
	reg.Register(kindEcho, echoExecutor())
	reg.Register(kindBoom, boomExecutor())
	return executor.New(reg)
}

func TestRun_TwoNodeChain(t *testing.T) {
	eng := newTestEngine()
	wf := workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "a", Kind: kindUpper},
			{ID: "b", Kind: kindEcho},
		},
		Edges: []workflow.Edge{{Source: "a", Target: "b"}},
	}

	results, err := eng.Run(context.Background(), wf, "u1")
	require.NoError(t, err)
	assert.Equal(t, "seed-ai", results["a"])
	assert.Equal(t, "seed-ai", results["b"])
}

func TestRun_CycleRejected(t *testing.T) {
	eng := newTestEngine()
	wf := workflow.Workflow{
		Nodes: []workflow.Node{{ID: "a", Kind: kindUpper}, {ID: "b", Kind: kindEcho}},
		Edges: []workflow.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}},
	}

	_, err := eng.Run(context.Background(), wf, "u1")
	assert.ErrorIs(t, err, workflow.ErrCycle)
}

// A node that errors does not poison its siblings: downstream nodes with
// no dependency on the failed node still execute and return their own
// results, only the failed node's own slot carries the Error: tag.
func TestRun_ErrorDoesNotPoisonSiblings(t *testing.T) {
	eng := newTestEngine()
	wf := workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "bad", Kind: kindBoom},
			{ID: "good", Kind: kindUpper},
		},
	}

	results, err := eng.Run(context.Background(), wf, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Error: prompt is required", results["bad"])
	assert.Equal(t, "seed-ai", results["good"])
}

func TestRun_UnregisteredKindYieldsNotification(t *testing.T) {
	eng := newTestEngine()
	wf := workflow.Workflow{
		Nodes: []workflow.Node{{ID: "a", Kind: "document_parser"}},
	}

	results, err := eng.Run(context.Background(), wf, "u1")
	require.NoError(t, err)
	assert.Contains(t, results["a"], "not implemented")
}

func TestRun_DanglingEdgeRejected(t *testing.T) {
	eng := newTestEngine()
	wf := workflow.Workflow{
		Nodes: []workflow.Node{{ID: "a", Kind: kindUpper}},
		Edges: []workflow.Edge{{Source: "a", Target: "ghost"}},
	}

	_, err := eng.Run(context.Background(), wf, "u1")
	var danglingErr *workflow.DanglingEdgeError
	assert.ErrorAs(t, err, &danglingErr)
}
