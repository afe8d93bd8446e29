// Package history defines the execution-record persistence seam. The
// engine writes one ExecutionRecord per run through Persistence; this
// module ships only the in-memory implementation (memstore) since the
// durable store sits behind "the persistence layer for users and saved
// workflow definitions" that spec.md places out of scope — but
// execution history itself is in scope, so the interface plus a usable
// implementation are required.
package history

import (
	"context"
	"strings"
	"time"

	"github.com/SHXZ7/autofloww/internal/workflow"
)

// ExecutionRecord captures one completed run: its inputs, the node-by-node
// results, and a derived status.
type ExecutionRecord struct {
	RunID      string // uuid.New().String(), assigned by the engine per run
	UserID     string
	WorkflowID string // empty for ad-hoc (unsaved) workflows
	Nodes      []workflow.Node
	Edges      []workflow.Edge
	Results    map[string]string // node id -> flattened wire result
	Status     Status
	StartedAt  time.Time
	FinishedAt time.Time
}

// Status is derived from whether any node's result carries the Error
// tag, per spec §7: a run with at least one failed node is "failed",
// never "succeeded", even though execution continues past the failure.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// DeriveStatus inspects the result map the way the engine would before
// saving a record: any Error: or Failed: tagged result marks the whole
// run failed.
func DeriveStatus(results map[string]string) Status {
	for _, v := range results {
		if strings.HasPrefix(v, "Error:") || strings.HasPrefix(v, "Failed:") {
			return StatusFailed
		}
	}
	return StatusSucceeded
}

// Persistence is the seam the engine writes execution records through.
type Persistence interface {
	SaveExecution(ctx context.Context, rec ExecutionRecord) error
	IncrementExecutionCount(ctx context.Context, userID string) error
}
