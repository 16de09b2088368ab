package telemetry

import "go.opentelemetry.io/otel/metric"

// Metrics holds the instruments of the decision path. Audit failures are
// visible only here and in logs, never in API responses.
type Metrics struct {
	Decisions        metric.Int64Counter
	AdvisoryFailures metric.Int64Counter
	AuditFailures    metric.Int64Counter
	AdvisoryDuration metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.Decisions, err = meter.Int64Counter("taskapp.decision.count",
		metric.WithDescription("Decisions returned, by source (advisory|fallback)"),
	)
	if err != nil {
		return nil, err
	}

	m.AdvisoryFailures, err = meter.Int64Counter("taskapp.advisory.failures",
		metric.WithDescription("Advisory calls or validations that triggered the fallback"),
	)
	if err != nil {
		return nil, err
	}

	m.AuditFailures, err = meter.Int64Counter("taskapp.audit.failures",
		metric.WithDescription("Decision audit rows that could not be persisted"),
	)
	if err != nil {
		return nil, err
	}

	m.AdvisoryDuration, err = meter.Float64Histogram("taskapp.advisory.duration",
		metric.WithDescription("Advisory round trip duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}
