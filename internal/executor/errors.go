package executor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/SHXZ7/autofloww/internal/workflow"
)

// Classification distinguishes errors worth retrying (at the adapter
// level — the engine itself never retries, per spec §7) from permanent
// ones. Grounded on internal/executor/errors.go's ErrorClassification,
// trimmed to the patterns this module's HTTP/SMTP-backed executors
// actually see.
type Classification int

const (
	ClassificationUnknown Classification = iota
	ClassificationTransient
	ClassificationPermanent
)

// ExecutionError wraps an executor-local failure with the node it
// occurred in and a transient/permanent classification, per spec §7
// class 2 and SPEC_FULL.md §7. It is never returned across the engine
// boundary as a Go error. No executor in this module constructs one:
// executors return adapter.Error/adapter.Failed results directly, and
// those are what the engine stores.
type ExecutionError struct {
	NodeID         string
	NodeKind       workflow.NodeKind
	Classification Classification
	Err            error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("node %s (%s): %v", e.NodeID, e.NodeKind, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// NewExecutionError classifies err and wraps it with node context.
func NewExecutionError(err error, nodeID string, kind workflow.NodeKind) *ExecutionError {
	return &ExecutionError{
		NodeID:         nodeID,
		NodeKind:       kind,
		Classification: Classify(err),
		Err:            err,
	}
}

// Classify applies the same network/context/message-pattern heuristics
// as internal/executor/errors.go's ClassifyError, trimmed to the error
// shapes this module's net/http- and net/smtp-based clients produce.
func Classify(err error) Classification {
	if err == nil {
		return ClassificationUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassificationTransient
	}
	if errors.Is(err, context.Canceled) {
		return ClassificationPermanent
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassificationTransient
	}

	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"timeout", "timed out", "temporary failure", "connection refused",
		"connection reset", "network is unreachable", "too many connections",
		"service unavailable", "rate limit", "throttle", "try again",
		"gateway timeout", "bad gateway",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return ClassificationTransient
		}
	}
	return ClassificationPermanent
}
