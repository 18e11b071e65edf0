// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wires the router's OpenTelemetry tracer provider and
// Prometheus-backed metric provider. Every package-level tracer elsewhere
// in this module (otel.Tracer("...")) picks up whatever provider Setup
// installs globally, so call it once at process start before routing any
// traffic.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Config controls how tracing is exported. Metrics always register with the
// process-wide Prometheus registry via promauto, independent of this config;
// Setup only adds the OTel metric bridge on top.
type Config struct {
	ServiceName string
	// TraceToStdout prints spans to stdout as they complete. Intended for
	// local development; a production deployment would swap in an OTLP
	// exporter without changing any call site that uses otel.Tracer.
	TraceToStdout bool
}

// Shutdown flushes and releases whatever providers Setup installed.
type Shutdown func(ctx context.Context) error

// Setup installs a global TracerProvider and MeterProvider and returns a
// Shutdown to call during graceful termination.
func Setup(ctx context.Context, cfg Config) (Shutdown, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "agentrouter"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	var tracerOpts []sdktrace.TracerProviderOption
	tracerOpts = append(tracerOpts, sdktrace.WithResource(res))
	if cfg.TraceToStdout {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		tracerOpts = append(tracerOpts, sdktrace.WithBatcher(exp))
	}
	tp := sdktrace.NewTracerProvider(tracerOpts...)
	otel.SetTracerProvider(tp)

	promExporter, err := otelprometheus.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus metric exporter: %w", err)
	}
	mp := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(promExporter),
	)
	otel.SetMeterProvider(mp)

	slog.Info("telemetry initialized",
		slog.String("service_name", cfg.ServiceName),
		slog.Bool("trace_to_stdout", cfg.TraceToStdout),
	)

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown tracer provider: %w", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown meter provider: %w", err)
		}
		return nil
	}, nil
}
