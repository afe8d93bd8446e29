// Package tracing wraps execution-core operations in OpenTelemetry
// spans, grounded on internal/tracing/executor.go's wrapper-function
// shape but trimmed to the two boundaries this module instruments: a
// run and a node within it.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("autoflow/executor")

// Run wraps a workflow run with a span, recording the outcome.
func Run(ctx context.Context, trigger, workflowID string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "workflow.execute", trace.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("workflow_id", workflowID),
	))
	defer span.End()

	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "execution completed")
	return nil
}

// Node wraps a single node execution with a span.
func Node(ctx context.Context, nodeID string, kind string, fn func(context.Context) (string, error)) (string, error) {
	ctx, span := tracer.Start(ctx, "workflow.node."+kind, trace.WithAttributes(
		attribute.String("node.id", nodeID),
		attribute.String("node.kind", kind),
	))
	defer span.End()

	result, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	span.SetStatus(codes.Ok, "node completed")
	return result, nil
}
