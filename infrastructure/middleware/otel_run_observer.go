package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.RunObserver = (*OTelRunObserver)(nil)

// OTelRunObserver traces consensus runs with OpenTelemetry. Each run gets a
// "Engine.Run" span carrying its size and outcome; unit spans nest under
// it. Error conditions are recorded as span events with the offending
// candidate and nodes.
type OTelRunObserver struct {
	tracer trace.Tracer
}

// NewOTelRunObserver creates an observer using the global tracer provider.
func NewOTelRunObserver() *OTelRunObserver {
	return NewOTelRunObserverWithProvider(otel.GetTracerProvider())
}

// NewOTelRunObserverWithProvider creates an observer on a specific tracer
// provider.
func NewOTelRunObserverWithProvider(tp trace.TracerProvider) *OTelRunObserver {
	return &OTelRunObserver{tracer: tp.Tracer("consensus-engine")}
}

// RunStarted implements ports.RunObserver. It opens the run span and
// returns a context carrying it.
func (o *OTelRunObserver) RunStarted(ctx context.Context, runID string, nodes, candidates int) context.Context {
	ctx, _ = o.tracer.Start(ctx, "Engine.Run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.nodes", nodes),
			attribute.Int("run.candidates", candidates),
		),
	)
	return ctx
}

// RunFinished implements ports.RunObserver. It annotates and ends the span
// opened by RunStarted.
func (o *OTelRunObserver) RunFinished(ctx context.Context, result *domain.Result, elapsed time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(attribute.Int64("run.elapsed_ms", elapsed.Milliseconds()))

	if err != nil {
		o.recordFailure(span, err)
		return
	}

	contested, undecided := result.Winners.Contested(), result.Winners.Undecided()
	span.SetAttributes(
		attribute.String("run.graph_fingerprint", result.GraphFingerprint),
		attribute.Int("winners.contested", contested),
		attribute.Int("winners.undecided", undecided),
	)
	if len(result.Ranking) > 0 {
		span.SetAttributes(attribute.String("ranking.leader", result.Ranking[0].Candidate))
	}
	if undecided > 0 {
		span.AddEvent("winners.no_evidence", trace.WithAttributes(
			attribute.Int("nodes", undecided),
		))
	}
	span.SetStatus(codes.Ok, "consensus run completed")
}

// recordFailure adds an event describing typed run errors.
func (o *OTelRunObserver) recordFailure(span trace.Span, err error) {
	var (
		mismatch     *domain.DomainMismatchError
		inconsistent *domain.InconsistentGraphError
		invalid      *domain.InvalidStatusValueError
	)

	switch {
	case errors.As(err, &mismatch):
		span.AddEvent("candidate.domain_mismatch", trace.WithAttributes(
			attribute.String("candidate", mismatch.Candidate),
			attribute.Int("missing", len(mismatch.Missing)),
			attribute.Int("extra", len(mismatch.Extra)),
		))
	case errors.As(err, &inconsistent):
		span.AddEvent("candidate.inconsistent_graph", trace.WithAttributes(
			attribute.String("candidate", inconsistent.Candidate),
		))
	case errors.As(err, &invalid):
		span.AddEvent("candidate.invalid_status", trace.WithAttributes(
			attribute.String("candidate", invalid.Candidate),
			attribute.String("node", string(invalid.Node)),
			attribute.Int("value", int(invalid.Value)),
		))
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
