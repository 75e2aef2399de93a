package service

import (
	"errors"

	"casetracker/core"
	"casetracker/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Operation names used for spans and the entity operation metric.
const (
	opCreate        = "create"
	opReplace       = "replace"
	opPartialUpdate = "partial_update"
	opGet           = "get"
	opList          = "list"
	opDelete        = "delete"
)

const tracerName = "casetracker/service"

// Option configures optional service dependencies.
type Option func(*options)

type options struct {
	tracer trace.Tracer
}

// WithTracer sets the tracer used for per-operation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{tracer: noop.NewTracerProvider().Tracer(tracerName)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// outcomeOf returns the metric outcome label for err.
func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	var entityErr *core.EntityError
	if errors.As(err, &entityErr) {
		return entityErr.Key
	}
	return "error"
}

// finishOperation records the outcome on the span and in metrics, then ends the span.
func finishOperation(span trace.Span, entity, op string, err error) {
	outcome := outcomeOf(err)
	metrics.EntityOperations.WithLabelValues(entity, op, outcome).Inc()

	span.SetAttributes(attribute.String("outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	span.End()
}

// normalizePageRequest clamps page and size into the supported bounds.
func normalizePageRequest(req core.PageRequest) core.PageRequest {
	if req.Page < 0 {
		req.Page = 0
	}
	if req.Size <= 0 {
		req.Size = core.DefaultPageSize
	}
	if req.Size > core.MaxPageSize {
		req.Size = core.MaxPageSize
	}
	return req
}
