package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/rezkam/taskboard/internal/infrastructure/persistence"

// Outcomes recorded on the transaction counter.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomePanicked   = "panicked"
)

// TxInstruments traces and counts store transactions.
// It uses the global providers, so it records nothing until Init has run.
type TxInstruments struct {
	backend  string
	tracer   trace.Tracer
	count    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewTxInstruments creates instruments labelled with the storage backend name.
func NewTxInstruments(backend string) (*TxInstruments, error) {
	meter := otel.Meter(instrumentationName)

	count, err := meter.Int64Counter("taskboard.store.transactions",
		metric.WithDescription("Store transactions by outcome"),
		metric.WithUnit("{transaction}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("taskboard.store.transaction.duration",
		metric.WithDescription("Store transaction duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &TxInstruments{
		backend:  backend,
		tracer:   otel.Tracer(instrumentationName),
		count:    count,
		duration: duration,
	}, nil
}

// Start opens a span for one transaction. The returned func ends it and records
// the outcome; it must be called exactly once.
func (i *TxInstruments) Start(ctx context.Context, txID string) (context.Context, func(outcome string, err error)) {
	start := time.Now()
	ctx, span := i.tracer.Start(ctx, "taskboard.store.atomic",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", i.backend),
			attribute.String("taskboard.tx_id", txID),
		),
	)

	return ctx, func(outcome string, err error) {
		attrs := metric.WithAttributes(
			attribute.String("db.system", i.backend),
			attribute.String("outcome", outcome),
		)
		i.count.Add(ctx, 1, attrs)
		i.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}
}
