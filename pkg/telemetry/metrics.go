package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const instrumentationName = "github.com/ghuser/todos"

// TodoOperations counts todo use-case calls, labelled by operation and outcome.
const TodoOperations = "todo.operations"

// Outcome label values for TodoOperations.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// httpServerDuration is the otelhttp server latency histogram, in seconds.
const httpServerDuration = "http.server.request.duration"

// NewOperationCounter creates the TodoOperations counter on the global meter
// provider. Call it after Setup so the counter reaches /metrics.
func NewOperationCounter() (metric.Int64Counter, error) {
	return otel.Meter(instrumentationName).Int64Counter(
		TodoOperations,
		metric.WithDescription("Todo use-case invocations by operation and outcome"),
		metric.WithUnit("{operation}"),
	)
}

// Views keeps per-user identifiers out of metric labels and sizes the request
// latency buckets for a CRUD API; most calls finish well under a second and
// event streams are long-lived.
func Views() []sdkmetric.View {
	return []sdkmetric.View{
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: TodoOperations},
			sdkmetric.Stream{AttributeFilter: attribute.NewAllowKeysFilter("operation", "outcome")},
		),
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: httpServerDuration},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
				Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 30},
			}},
		),
	}
}
