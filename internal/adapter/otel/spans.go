package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "genia"

// StartProcessSpan starts the root span for one processed message.
func StartProcessSpan(ctx context.Context, userID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "process_message",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
}

// StartAnalyzeSpan starts a span for intent analysis.
func StartAnalyzeSpan(ctx context.Context, classifier string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "analyze_intent",
		trace.WithAttributes(attribute.String("classifier", classifier)),
	)
}

// StartTaskSpan starts a span for the execution of one task.
func StartTaskSpan(ctx context.Context, taskID, taskType, platform string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "execute_task",
		trace.WithAttributes(
			attribute.String("task.id", taskID),
			attribute.String("task.type", taskType),
			attribute.String("task.platform", platform),
		),
	)
}

// StartCompletionSpan starts a span for a conversational clone reply.
func StartCompletionSpan(ctx context.Context, clone string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "clone_completion",
		trace.WithAttributes(attribute.String("clone", clone)),
	)
}
