package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/credential"
	"github.com/SHXZ7/autofloww/internal/history"
	"github.com/SHXZ7/autofloww/internal/metrics"
	"github.com/SHXZ7/autofloww/internal/tracing"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

// WorkflowRegistrar is the seam the engine's pre-pass writes
// webhook-triggerable workflows through. webhookstore.Store satisfies
// it. Kept as an interface here (rather than importing webhookstore
// directly) so the engine, webhook router, and scheduler don't form an
// import cycle — each depends inward on this package's types instead.
type WorkflowRegistrar interface {
	Register(key string, wf workflow.Workflow)
}

// CronRegistrar is the seam the engine's pre-pass writes scheduled
// `schedule` nodes through. scheduler.Registry satisfies it.
type CronRegistrar interface {
	Register(key, cronExpr string, wf workflow.Workflow) error
}

// Engine drives one workflow to completion: pre-pass registration,
// validation, ordering, sequential node execution, and best-effort
// history/metrics recording. Grounded on internal/executor/executor.go's
// Execute, generalized per SPEC_FULL.md §4.5.
type Engine struct {
	Registry  *Registry
	Webhooks  WorkflowRegistrar
	Scheduler CronRegistrar
	History   history.Persistence
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// New builds an Engine. Webhooks, Scheduler, History, Metrics and
// Logger may be left nil by tests that don't exercise those seams;
// Run guards every optional dependency before use.
func New(registry *Registry) *Engine {
	return &Engine{Registry: registry, Logger: slog.Default()}
}

// Run executes wf on behalf of userID (may be empty for anonymous/
// scheduled runs) and returns the per-node result map, or an error if
// the graph itself is invalid (cycle, dangling edge, duplicate id).
//
// Per spec §4.5 step 2, pre-pass registrations performed in step 1 are
// NOT rolled back if validation subsequently fails — this is the
// documented, deliberately-preserved behaviour from spec §9's first
// open question, not a bug introduced here.
func (e *Engine) Run(ctx context.Context, wf workflow.Workflow, userID string) (map[string]string, error) {
	started := time.Now()
	trigger := triggerLabel(ctx)
	runID := uuid.New().String()
	if e.Logger != nil {
		e.Logger.Info("run started", "run_id", runID, "trigger", trigger, "user_id", userID)
	}

	e.prePass(wf)

	if err := wf.Validate(); err != nil {
		e.recordExecution(trigger, "error", started)
		return nil, err
	}
	order, err := workflow.Order(wf)
	if err != nil {
		e.recordExecution(trigger, "error", started)
		return nil, err
	}

	// A broker is always constructed, even for anonymous (webhook/schedule)
	// runs, so the environment-fallback tier of credential resolution
	// still applies. It is built over credential.NoStore, so the engine
	// never consults a user credential record: every accessor resolves
	// from the environment or to empty, whether or not userID is set.
	broker := credential.NewBroker(credential.NoStore{}, userID)

	results := make(map[string]adapter.Result, len(wf.Nodes))
	stringResults := make(map[string]string, len(wf.Nodes))

	err = tracing.Run(ctx, trigger, workflowIdentity(wf), func(ctx context.Context) error {
		for _, nodeID := range order {
			node, _ := wf.NodeByID(nodeID)
			predecessors := e.predecessorResults(wf, nodeID, results)

			res := e.executeNode(ctx, node, predecessors, broker)
			results[nodeID] = res
			stringResults[nodeID] = res.String()
		}
		return nil
	})
	if err != nil {
		e.recordExecution(trigger, "error", started)
		return stringResults, err
	}

	status := history.DeriveStatus(stringResults)
	e.saveHistory(ctx, runID, userID, wf, stringResults, started, status)
	e.recordExecution(trigger, string(status), started)

	return stringResults, nil
}

func (e *Engine) executeNode(ctx context.Context, node workflow.Node, predecessors map[string]adapter.Result, broker *credential.Broker) adapter.Result {
	exec, ok := e.Registry.Get(node.Kind)
	if !ok {
		return adapter.Notification(fmt.Sprintf("%s node not implemented", node.Kind))
	}

	nodeStarted := time.Now()
	result, _ := tracing.Node(ctx, node.ID, string(node.Kind), func(ctx context.Context) (string, error) {
		r := exec.Execute(ctx, Request{Node: node, Predecessors: predecessors, Broker: broker})
		return r.String(), nil
	})

	if e.Metrics != nil {
		status := "ok"
		if len(result) >= 6 && result[:6] == "Error:" {
			status = "error"
		}
		e.Metrics.RecordNode(string(node.Kind), status, time.Since(nodeStarted).Seconds())
	}

	return adapter.Parse(result)
}

// predecessorResults gathers the immediate predecessors' results for
// nodeID from the already-computed results map, per spec §4.5 step 4.
func (e *Engine) predecessorResults(wf workflow.Workflow, nodeID string, results map[string]adapter.Result) map[string]adapter.Result {
	out := make(map[string]adapter.Result)
	for _, edge := range wf.Edges {
		if edge.Target == nodeID {
			if r, ok := results[edge.Source]; ok {
				out[edge.Source] = r
			}
		}
	}
	return out
}

// prePass implements spec §4.5 step 1: register webhook nodes under
// their own node id, and schedule nodes under `scheduled_<node_id>`.
func (e *Engine) prePass(wf workflow.Workflow) {
	for _, node := range wf.Nodes {
		switch node.Kind {
		case workflow.NodeWebhook:
			if e.Webhooks != nil {
				e.Webhooks.Register(node.ID, wf)
			}
		case workflow.NodeSchedule:
			if e.Scheduler != nil {
				expr := cronExprFromConfig(node.Config)
				if expr != "" {
					_ = e.Scheduler.Register("scheduled_"+node.ID, expr, wf)
				}
			}
		}
	}
}

func cronExprFromConfig(raw json.RawMessage) string {
	var cfg struct {
		Cron string `json:"cron"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return ""
	}
	return cfg.Cron
}

func (e *Engine) saveHistory(ctx context.Context, runID, userID string, wf workflow.Workflow, results map[string]string, started time.Time, status history.Status) {
	if e.History == nil {
		return
	}
	rec := history.ExecutionRecord{
		RunID:      runID,
		UserID:     userID,
		Nodes:      wf.Nodes,
		Edges:      wf.Edges,
		Results:    results,
		Status:     status,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := e.History.SaveExecution(ctx, rec); err != nil && e.Logger != nil {
		e.Logger.Warn("failed to save execution record", "error", err)
	}
	if userID != "" {
		if err := e.History.IncrementExecutionCount(ctx, userID); err != nil && e.Logger != nil {
			e.Logger.Warn("failed to increment execution count", "user_id", userID, "error", err)
		}
	}
}

func (e *Engine) recordExecution(trigger, status string, started time.Time) {
	if e.Metrics != nil {
		e.Metrics.RecordExecution(trigger, status, time.Since(started).Seconds())
	}
}

type triggerKey struct{}

// WithTrigger annotates ctx with the trigger type ("http", "webhook",
// "schedule") for metrics/tracing labels.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

func triggerLabel(ctx context.Context) string {
	if v, ok := ctx.Value(triggerKey{}).(string); ok && v != "" {
		return v
	}
	return "http"
}

func workflowIdentity(wf workflow.Workflow) string {
	if len(wf.Nodes) == 0 {
		return "empty"
	}
	return wf.Nodes[0].ID
}
