package webhookstore_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
	"github.com/SHXZ7/autofloww/internal/webhookstore"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

func payloadEchoRegistry() *executor.Registry {
	reg := executor.NewRegistry()
	reg.Register(workflow.NodeWebhook, executor.ExecutorFunc(func(ctx context.Context, req executor.Request) adapter.Result {
		return adapter.Notification(string(req.Node.Config))
	}))
	return reg
}

func TestStore_TriggerInjectsPayloadAndSource(t *testing.T) {
	eng := executor.New(payloadEchoRegistry())
	store := webhookstore.New(eng)

	wf := workflow.Workflow{Nodes: []workflow.Node{{ID: "hook", Kind: workflow.NodeWebhook, Config: json.RawMessage(`{}`)}}}
	store.Register("hook-1", wf)

	results, err := store.Trigger(context.Background(), "hook-1", json.RawMessage(`{"x":1}`), "github")
	require.NoError(t, err)
	assert.Contains(t, results["hook"], `"webhook_payload":{"x":1}`)
	assert.Contains(t, results["hook"], `"webhook_source":"github"`)
}

func TestStore_TriggerUnknownIDReturnsNotFound(t *testing.T) {
	eng := executor.New(executor.NewRegistry())
	store := webhookstore.New(eng)

	_, err := store.Trigger(context.Background(), "ghost", nil, "")
	assert.ErrorIs(t, err, webhookstore.ErrNotFound)
}

func TestStore_ReRegisterLatestWins(t *testing.T) {
	eng := executor.New(executor.NewRegistry())
	store := webhookstore.New(eng)

	store.Register("k", workflow.Workflow{Nodes: []workflow.Node{{ID: "a", Kind: workflow.NodeWebhook}}})
	store.Register("k", workflow.Workflow{Nodes: []workflow.Node{{ID: "b", Kind: workflow.NodeWebhook}}})

	wf, ok := store.Get("k")
	require.True(t, ok)
	require.Len(t, wf.Nodes, 1)
	assert.Equal(t, "b", wf.Nodes[0].ID)
}

func TestStore_ListIsSorted(t *testing.T) {
	eng := executor.New(executor.NewRegistry())
	store := webhookstore.New(eng)
	store.Register("zeta", workflow.Workflow{})
	store.Register("alpha", workflow.Workflow{})

	assert.Equal(t, []string{"alpha", "zeta"}, store.List())
}
