// Package opentr configures opentracing spans for remote session calls.
package opentr

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"
)

var (
	successEvent = log.String("event", "success")
	errorEvent   = log.String("event", "error")
)

// Start begins a span named op as a child of any span in ctx.
func Start(ctx context.Context, t opentracing.Tracer, op string) (opentracing.Span, context.Context) {
	return opentracing.StartSpanFromContextWithTracer(ctx, t, op)
}

// AddSessionID tags s with the client session id.
func AddSessionID(s opentracing.Span, id string) {
	if id != "" {
		s.SetTag("session_id", id)
	}
}

// SetupBrowse configures s as a browse span.
func SetupBrowse(s opentracing.Span, node, referenceType string) {
	s.SetTag("subsystem", "browse")
	s.SetTag("node_id", node)
	if referenceType != "" {
		s.SetTag("reference_type", referenceType)
	}
}

// SetupAttribute configures s as a read or write span of one attribute.
func SetupAttribute(s opentracing.Span, subsystem, node, attribute string) {
	s.SetTag("subsystem", subsystem)
	s.SetTag("node_id", node)
	s.SetTag("attribute", attribute)
}

// LogSuccess logs a success event with the status and extra fields.
func LogSuccess(s opentracing.Span, status string, fields ...log.Field) {
	s.LogFields(append([]log.Field{successEvent, log.String("status", status)}, fields...)...)
}

// LogError marks s as failed and logs err.
func LogError(s opentracing.Span, status string, err error) {
	ext.Error.Set(s, true)
	s.LogFields(
		errorEvent,
		log.String("status", status),
		log.String("message", err.Error()),
	)
}
