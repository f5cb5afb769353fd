package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "bonsai"

// StartInterpretSpan starts a span for a provider interpretation call.
func StartInterpretSpan(ctx context.Context, conversationID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "interpret",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
		),
	)
}

// StartExecuteSpan starts a span for command execution.
func StartExecuteSpan(ctx context.Context, action string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "execute",
		trace.WithAttributes(
			attribute.String("command.action", action),
		),
	)
}
