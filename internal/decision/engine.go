// Package decision recommends the next lifecycle state of a task. The advisory
// service is consulted once; anything unusable falls back to a fixed local
// policy, so Decide always returns a decision.
package decision

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"taskapp-backend/internal/ai"
	"taskapp-backend/internal/auditlog"
	"taskapp-backend/internal/tasks"
	"taskapp-backend/internal/telemetry"
)

const (
	reasonHighPriority = "優先度が高いため、今すぐ着手すべきと判断しました。"
	reasonKeep         = "現状の状態を維持します。"

	failureInvalidOutput = "invalid_output"
)

type Decision struct {
	NextState tasks.State `json:"nextState"`
	Reason    string      `json:"reason"`
}

type Source string

const (
	SourceAdvisory Source = "advisory"
	SourceFallback Source = "fallback"
)

// Outcome is a decision plus side-channel facts that never reach the client.
type Outcome struct {
	Decision Decision
	Source   Source
	AuditErr error
}

type Engine struct {
	Advisor   ai.Completer
	Audit     auditlog.Appender
	Validator *Validator
	Metrics   *telemetry.Metrics
	Tracer    trace.Tracer
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewEngine wires an engine with noop telemetry; callers may replace Metrics
// and Tracer afterwards.
func NewEngine(advisor ai.Completer, audit auditlog.Appender, logger *slog.Logger) (*Engine, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	m, err := telemetry.NewMetrics(noop.NewMeterProvider().Meter(telemetry.MeterName))
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Advisor:   advisor,
		Audit:     audit,
		Validator: v,
		Metrics:   m,
		Tracer:    nooptrace.NewTracerProvider().Tracer(telemetry.TracerName),
		Logger:    logger,
		Now:       time.Now,
	}, nil
}

// Fallback is the local policy: a pending high-priority task should start,
// everything else stays where it is.
func Fallback(t tasks.Task) Decision {
	if t.State == tasks.StatePending && t.Priority != nil && *t.Priority == "high" {
		return Decision{NextState: tasks.StateExecuting, Reason: reasonHighPriority}
	}
	return Decision{NextState: t.State, Reason: reasonKeep}
}

// Decide never fails. Audit errors are reported in Outcome.AuditErr only.
func (e *Engine) Decide(ctx context.Context, t tasks.Task) Outcome {
	ctx, span := e.Tracer.Start(ctx, "decision.decide",
		trace.WithAttributes(telemetry.AttrTaskID.Int64(t.ID)),
	)
	defer span.End()

	d, source := e.advise(ctx, t)

	span.SetAttributes(
		telemetry.AttrSource.String(string(source)),
		telemetry.AttrNextState.String(string(d.NextState)),
	)
	e.Metrics.Decisions.Add(ctx, 1, metric.WithAttributes(telemetry.AttrSource.String(string(source))))

	if source == SourceAdvisory && isRegression(t.State, d.NextState) {
		e.Logger.InfoContext(ctx, "advisory suggested an earlier state",
			"task_id", t.ID, "from", t.State, "to", d.NextState, "regression", true)
	}

	out := Outcome{Decision: d, Source: source}
	out.AuditErr = e.record(ctx, t.ID, d)
	if out.AuditErr != nil {
		span.RecordError(out.AuditErr)
	}
	return out
}

func (e *Engine) advise(ctx context.Context, t tasks.Task) (Decision, Source) {
	start := time.Now()
	raw, err := e.Advisor.Complete(ctx, buildPrompt(t))
	e.Metrics.AdvisoryDuration.Record(ctx, time.Since(start).Seconds())

	failure := ""
	if err != nil {
		failure = string(ai.ReasonOf(err))
		if failure == "" {
			failure = "unknown"
		}
	} else {
		var d Decision
		d, err = e.Validator.Parse(raw)
		if err == nil {
			return d, SourceAdvisory
		}
		failure = failureInvalidOutput
	}

	trace.SpanFromContext(ctx).SetStatus(codes.Error, failure)
	e.Metrics.AdvisoryFailures.Add(ctx, 1, metric.WithAttributes(telemetry.AttrReason.String(failure)))
	e.Logger.WarnContext(ctx, "decision fell back to local policy",
		"task_id", t.ID, "reason", failure, "error", err)
	return Fallback(t), SourceFallback
}

// record appends the decision on a context that ignores request cancellation.
func (e *Engine) record(ctx context.Context, taskID int64, d Decision) error {
	ctx = context.WithoutCancel(ctx)
	_, err := e.Audit.Append(ctx, auditlog.Entry{
		TaskID:         taskID,
		SuggestedState: string(d.NextState),
		Reason:         d.Reason,
		CreatedAt:      e.Now().UTC(),
	})
	if err != nil {
		e.Metrics.AuditFailures.Add(ctx, 1)
		e.Logger.WarnContext(ctx, "decision audit append failed",
			"task_id", taskID, "error", err)
	}
	return err
}

func buildPrompt(t tasks.Task) ai.Prompt {
	allowed := make([]string, 0, len(tasks.States()))
	for _, s := range tasks.States() {
		allowed = append(allowed, string(s))
	}

	var due *string
	if t.DueDate != nil {
		s := t.DueDate.String()
		due = &s
	}

	return ai.BuildDecisionPrompt(ai.DecisionInput{
		Title:        t.Title,
		Priority:     t.Priority,
		DueDate:      due,
		CurrentState: string(t.State),
		Allowed:      allowed,
	})
}

func isRegression(from, to tasks.State) bool {
	order := tasks.States()
	return slices.Index(order, to) < slices.Index(order, from)
}
