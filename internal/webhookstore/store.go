// Package webhookstore holds the process-wide table of workflows
// reachable by an inbound webhook (StoredWorkflow in spec §3), as a
// dependency-injected service object rather than a package-level
// global — the redesign spec §9 ("Global mutable state") calls for.
// Grounded on the register/list shape of
// internal/api/handlers/webhook.go and internal/workflow/webhooks.go,
// generalized from the teacher's durable webhook-config rows to this
// spec's simpler process-lifetime StoredWorkflow table.
package webhookstore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/SHXZ7/autofloww/internal/executor"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

// ErrNotFound is returned when an id has no registered workflow.
var ErrNotFound = errors.New("no workflow registered under this id")

// Store is the registry of stored workflows plus the engine used to
// execute them when triggered.
type Store struct {
	mu        sync.RWMutex
	workflows map[string]workflow.Workflow
	engine    *executor.Engine
}

// New returns an empty Store bound to engine for triggered executions.
func New(engine *executor.Engine) *Store {
	return &Store{workflows: make(map[string]workflow.Workflow), engine: engine}
}

// Register stores wf under key, replacing any prior workflow there —
// per spec §4.6, "If the same id is re-registered, the latest wins."
// Satisfies executor.WorkflowRegistrar for the engine's pre-pass.
func (s *Store) Register(key string, wf workflow.Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[key] = wf
}

// Get returns the workflow registered under id, if any. Used by the
// scheduler to resolve a workflow_id passed to POST /schedule into the
// workflow definition to re-run on each fire.
func (s *Store) Get(id string) (workflow.Workflow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.workflows[id]
	return wf, ok
}

// List returns every registered id, sorted for stable output.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.workflows))
	for id := range s.workflows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Trigger looks up the workflow stored under id, injects payload/source
// into every webhook node's config, and invokes the engine. Per spec
// §4.6: "mutates each webhook node's config by injecting
// webhook_payload = payload and webhook_source = source".
func (s *Store) Trigger(ctx context.Context, id string, payload json.RawMessage, source string) (map[string]string, error) {
	s.mu.RLock()
	wf, ok := s.workflows[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	injected := wf
	injected.Nodes = make([]workflow.Node, len(wf.Nodes))
	copy(injected.Nodes, wf.Nodes)
	for i, n := range injected.Nodes {
		if n.Kind != workflow.NodeWebhook {
			continue
		}
		injected.Nodes[i].Config = injectWebhookPayload(n.Config, payload, source)
	}

	ctx = executor.WithTrigger(ctx, "webhook")
	return s.engine.Run(ctx, injected, "")
}

func injectWebhookPayload(raw json.RawMessage, payload json.RawMessage, source string) json.RawMessage {
	var cfg map[string]json.RawMessage
	if err := json.Unmarshal(raw, &cfg); err != nil || cfg == nil {
		cfg = make(map[string]json.RawMessage)
	}
	if payload == nil {
		payload = json.RawMessage("null")
	}
	cfg["webhook_payload"] = payload
	if source == "" {
		cfg["webhook_source"] = json.RawMessage("null")
	} else {
		sourceJSON, _ := json.Marshal(source)
		cfg["webhook_source"] = sourceJSON
	}

	out, err := json.Marshal(cfg)
	if err != nil {
		return raw
	}
	return out
}
