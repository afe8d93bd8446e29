package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
	"github.com/SHXZ7/autofloww/internal/scheduler"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

func fireCountingEngine(fired chan<- struct{}) *executor.Engine {
	reg := executor.NewRegistry()
	reg.Register(workflow.NodeWebhook, executor.ExecutorFunc(func(ctx context.Context, req executor.Request) adapter.Result {
		select {
		case fired <- struct{}{}:
		default:
		}
		return adapter.Notification("ran")
	}))
	return executor.New(reg)
}

func TestRegistry_RegisterRejectsInvalidExpr(t *testing.T) {
	eng := executor.New(executor.NewRegistry())
	sched := scheduler.New(eng, nil, nil)
	defer sched.Stop()

	err := sched.Register("job-1", "not a cron expr", workflow.Workflow{})
	assert.Error(t, err)
}

func TestRegistry_ReRegisterReplacesPriorJob(t *testing.T) {
	eng := executor.New(executor.NewRegistry())
	sched := scheduler.New(eng, nil, nil)
	defer sched.Stop()

	wf := workflow.Workflow{}
	require.NoError(t, sched.Register("job-1", "@every 1h", wf))
	require.NoError(t, sched.Register("job-1", "@every 2h", wf))

	jobs := sched.List()
	require.Len(t, jobs, 1)
	assert.Equal(t, "@every 2h", jobs[0].Trigger)
}

func TestRegistry_StopUnknownReturnsNotFound(t *testing.T) {
	eng := executor.New(executor.NewRegistry())
	sched := scheduler.New(eng, nil, nil)
	defer sched.Stop()

	err := sched.StopJob("ghost")
	assert.ErrorIs(t, err, scheduler.ErrNotFound)
}

func TestRegistry_StopIsIdempotent(t *testing.T) {
	eng := executor.New(executor.NewRegistry())
	sched := scheduler.New(eng, nil, nil)
	defer sched.Stop()

	require.NoError(t, sched.Register("job-1", "@every 1h", workflow.Workflow{}))
	require.NoError(t, sched.StopJob("job-1"))
	assert.ErrorIs(t, sched.StopJob("job-1"), scheduler.ErrNotFound)
}

func TestRegistry_FiresRegisteredWorkflow(t *testing.T) {
	fired := make(chan struct{}, 1)
	eng := fireCountingEngine(fired)
	sched := scheduler.New(eng, nil, nil)
	defer sched.Stop()

	require.NoError(t, sched.Register("job-1", "@every 1s", workflow.Workflow{
		Nodes: []workflow.Node{{ID: "n", Kind: workflow.NodeWebhook}},
	}))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job never fired")
	}
}

func TestRegistry_ListReflectsNextRun(t *testing.T) {
	eng := executor.New(executor.NewRegistry())
	sched := scheduler.New(eng, nil, nil)
	defer sched.Stop()

	require.NoError(t, sched.Register("job-1", "@every 1h", workflow.Workflow{}))

	jobs := sched.List()
	require.Len(t, jobs, 1)
	assert.NotEmpty(t, jobs[0].NextRun)
}
