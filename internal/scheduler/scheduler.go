// Package scheduler registers cron-expressed triggers that invoke the
// engine on stored workflows (spec §4.7), as a dependency-injected
// service object — per spec §9's "Global mutable state" redesign —
// rather than the teacher's package-level Scheduler. Where the teacher
// polls a due-schedules table on a ticker (internal/schedule/scheduler.go),
// this module holds one robfig/cron/v3 `cron.Cron` per process and
// registers/removes entries directly against it, matching
// `max_instances=1`/drop-on-overlap via cron.SkipIfStillRunning — closer
// to robfig/cron's native API, which the teacher also imports (for
// expression parsing in internal/schedule/cron.go).
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/SHXZ7/autofloww/internal/executor"
	"github.com/SHXZ7/autofloww/internal/metrics"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

// ErrNotFound is returned when stopping an unregistered workflow id.
var ErrNotFound = errors.New("no scheduled job for this workflow id")

type job struct {
	entryID  cron.EntryID
	cronExpr string
	wf       workflow.Workflow
}

// Registry is the process-wide scheduled-job table. Grounded on
// internal/schedule/scheduler.go's Scheduler, redesigned to wrap
// robfig/cron/v3 directly instead of a DB-polling ticker.
type Registry struct {
	mu      sync.Mutex
	cron    *cron.Cron
	jobs    map[string]*job
	engine  *executor.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New constructs a Registry bound to engine, starts its internal cron
// loop, and returns it. Callers must eventually call Stop.
func New(engine *executor.Engine, m *metrics.Metrics, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Start()
	return &Registry{cron: c, jobs: make(map[string]*job), engine: engine, metrics: m, logger: logger}
}

// Stop halts the underlying cron loop, waiting for any in-flight fire
// to finish.
func (r *Registry) Stop() {
	<-r.cron.Stop().Done()
}

// Register adds or replaces the cron entry under key, per spec §4.7:
// "re-registering an id replaces the prior trigger." Satisfies
// executor.CronRegistrar for the engine's `schedule`-node pre-pass
// (key = "scheduled_<node_id>") and is also called directly by the
// POST /schedule handler (key = workflow_id).
func (r *Registry) Register(key, cronExpr string, wf workflow.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.jobs[key]; ok {
		r.cron.Remove(existing.entryID)
		delete(r.jobs, key)
	}

	entryID, err := r.cron.AddFunc(cronExpr, func() { r.fire(key) })
	if err != nil {
		return err
	}
	r.jobs[key] = &job{entryID: entryID, cronExpr: cronExpr, wf: wf}
	return nil
}

func (r *Registry) fire(key string) {
	r.mu.Lock()
	j, ok := r.jobs[key]
	r.mu.Unlock()
	if !ok {
		return
	}

	ctx := executor.WithTrigger(context.Background(), "schedule")
	if _, err := r.engine.Run(ctx, j.wf, ""); err != nil {
		r.logger.Error("scheduled execution failed", "key", key, "error", err)
	}
}

// StopJob removes the job registered under workflowID. Idempotent after
// the first call, per spec §8: "Stopping a non-existent scheduled id
// returns the not-found error but has no side effect; stopping twice
// is idempotent after the first."
func (r *Registry) StopJob(workflowID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[workflowID]
	if !ok {
		return ErrNotFound
	}
	r.cron.Remove(j.entryID)
	delete(r.jobs, workflowID)
	return nil
}

// ScheduledWorkflow describes one active entry for the listing endpoint.
type ScheduledWorkflow struct {
	WorkflowID string `json:"workflow_id"`
	NextRun    string `json:"next_run"`
	Trigger    string `json:"trigger"`
}

// List returns every active scheduled job.
func (r *Registry) List() []ScheduledWorkflow {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ScheduledWorkflow, 0, len(r.jobs))
	for key, j := range r.jobs {
		entry := r.cron.Entry(j.entryID)
		out = append(out, ScheduledWorkflow{
			WorkflowID: key,
			NextRun:    entry.Next.Format("2006-01-02T15:04:05Z07:00"),
			Trigger:    j.cronExpr,
		})
	}
	return out
}
