package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ahrav/go-ballot/internal/domain"
)

func newRecordingObserver(t *testing.T) (*OTelRunObserver, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewOTelRunObserverWithProvider(tp), recorder
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, kv := range attrs {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestOTelRunObserver_Success(t *testing.T) {
	obs, recorder := newRecordingObserver(t)

	winners := domain.NewWinnerAssignment(
		[]domain.NodeID{"1", "2", "3"},
		[]string{"A", "B"},
		[][]string{{"A"}, {"A", "B"}, {}},
	)
	result := &domain.Result{
		RunID:            "run-1",
		GraphFingerprint: "abc123",
		Winners:          winners,
		Ranking:          winners.Ranking(),
	}

	ctx := obs.RunStarted(context.Background(), "run-1", 3, 2)
	obs.RunFinished(ctx, result, 15*time.Millisecond, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, "Engine.Run", span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)

	attrs := attrMap(span.Attributes())
	assert.Equal(t, "run-1", attrs["run.id"].AsString())
	assert.Equal(t, int64(3), attrs["run.nodes"].AsInt64())
	assert.Equal(t, int64(2), attrs["run.candidates"].AsInt64())
	assert.Equal(t, int64(15), attrs["run.elapsed_ms"].AsInt64())
	assert.Equal(t, int64(1), attrs["winners.contested"].AsInt64())
	assert.Equal(t, int64(1), attrs["winners.undecided"].AsInt64())
	assert.Equal(t, "A", attrs["ranking.leader"].AsString())

	require.Len(t, span.Events(), 1)
	assert.Equal(t, "winners.no_evidence", span.Events()[0].Name)
}

func TestOTelRunObserver_Failure(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantEvent string
	}{
		{
			name:      "domain mismatch",
			err:       &domain.DomainMismatchError{Candidate: "B", Missing: []domain.NodeID{"3"}},
			wantEvent: "candidate.domain_mismatch",
		},
		{
			name:      "inconsistent graph",
			err:       &domain.InconsistentGraphError{Candidate: "B", Expected: "aa", Actual: "bb"},
			wantEvent: "candidate.inconsistent_graph",
		},
		{
			name:      "invalid status",
			err:       &domain.InvalidStatusValueError{Candidate: "B", Node: "2", Value: 5},
			wantEvent: "candidate.invalid_status",
		},
		{
			name: "untyped error",
			err:  errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, recorder := newRecordingObserver(t)

			ctx := obs.RunStarted(context.Background(), "run-2", 3, 2)
			obs.RunFinished(ctx, nil, time.Millisecond, tt.err)

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			span := spans[0]
			assert.Equal(t, codes.Error, span.Status().Code)
			assert.Equal(t, tt.err.Error(), span.Status().Description)

			var names []string
			for _, ev := range span.Events() {
				names = append(names, ev.Name)
			}
			// RecordError always adds an "exception" event.
			assert.Contains(t, names, "exception")
			if tt.wantEvent != "" {
				assert.Contains(t, names, tt.wantEvent)
			}
		})
	}
}

func TestOTelRunObserver_ConcurrentRunsUseSeparateSpans(t *testing.T) {
	obs, recorder := newRecordingObserver(t)

	ctx1 := obs.RunStarted(context.Background(), "first", 1, 1)
	ctx2 := obs.RunStarted(context.Background(), "second", 1, 1)
	obs.RunFinished(ctx2, nil, 0, errors.New("second failed"))
	obs.RunFinished(ctx1, &domain.Result{}, 0, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	byID := map[string]codes.Code{}
	for _, s := range spans {
		byID[attrMap(s.Attributes())["run.id"].AsString()] = s.Status().Code
	}
	assert.Equal(t, codes.Ok, byID["first"])
	assert.Equal(t, codes.Error, byID["second"])
}
