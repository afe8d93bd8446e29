// Package executor implements the registry-based node dispatch and the
// execution engine that drives a workflow to completion. Grounded on
// internal/executor/executor.go's Execute loop and
// internal/executor/actions/registry.go's factory registry, redesigned
// per spec §9 ("Dynamic node dispatch") to a map[NodeKind]Executor
// instead of the teacher's inline switch.
package executor

import (
	"context"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/credential"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

// Request is everything an Executor needs to produce a result: the
// node being executed, the flattened results of its immediate
// predecessors (by node id), and the run's credential broker.
type Request struct {
	Node         workflow.Node
	Predecessors map[string]adapter.Result
	Broker       *credential.Broker
}

// Executor runs a single node kind. Implementations are pure functions
// of (config, predecessor outputs, credential broker) -> Result, per
// spec §4.3; they do not return a Go error for ordinary failures — a
// failed call is itself a Result carrying KindError, so the engine
// never needs to special-case executor failures.
type Executor interface {
	Execute(ctx context.Context, req Request) adapter.Result
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req Request) adapter.Result

func (f ExecutorFunc) Execute(ctx context.Context, req Request) adapter.Result { return f(ctx, req) }

// Registry maps node kinds to the Executor that handles them. Grounded
// on actions.Registry's factories map, narrowed to a fixed set of
// ready-made Executor values (no per-call factory — executors here are
// stateless aside from their injected clients) since this module's
// node kinds are a closed set, not a user-extensible plugin surface.
type Registry struct {
	executors map[workflow.NodeKind]Executor
}

// NewRegistry returns an empty registry; callers Register each kind.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[workflow.NodeKind]Executor)}
}

func (r *Registry) Register(kind workflow.NodeKind, e Executor) {
	r.executors[kind] = e
}

// Get returns the executor for kind, if one is registered.
func (r *Registry) Get(kind workflow.NodeKind) (Executor, bool) {
	e, ok := r.executors[kind]
	return e, ok
}
