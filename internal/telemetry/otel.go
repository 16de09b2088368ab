package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"taskapp-backend/internal/config"
)

const (
	TracerName = "taskapp"
	MeterName  = "taskapp"
)

var (
	AttrTaskID    = attribute.Key("taskapp.task.id")
	AttrModel     = attribute.Key("taskapp.llm.model")
	AttrSource    = attribute.Key("taskapp.decision.source")
	AttrReason    = attribute.Key("taskapp.advisory.failure")
	AttrNextState = attribute.Key("taskapp.decision.next_state")
)

// Provider bundles the tracer and meter handed to components.
type Provider struct {
	Tracer   trace.Tracer
	Meter    metric.Meter
	shutdown func(context.Context) error
}

// Init sets up OpenTelemetry. Disabled config yields noop instruments.
func Init(ctx context.Context, cfg config.OTelConfig) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{
			Tracer:   nooptrace.NewTracerProvider().Tracer(TracerName),
			Meter:    noop.NewMeterProvider().Meter(MeterName),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "taskapp"
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}
	if exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tp)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))

	return &Provider{
		Tracer: tp.Tracer(TracerName),
		Meter:  mp.Meter(MeterName),
		shutdown: func(ctx context.Context) error {
			tErr := tp.Shutdown(ctx)
			mErr := mp.Shutdown(ctx)
			if tErr != nil {
				return tErr
			}
			return mErr
		},
	}, nil
}

func (p *Provider) Shutdown(ctx context.Context) error {
	if p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

func createExporter(ctx context.Context, cfg config.OTelConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlp-http":
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = "localhost:4318"
		}
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		)
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown exporter: %s (supported: otlp-http, stdout, none)", cfg.Exporter)
	}
}
