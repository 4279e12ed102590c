// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import (
	"context"
	"errors"
	"log/slog"

	mexporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/jaycherian/gcp-go-video-preview/internal/cloud"
	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/contrib/propagators/autoprop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Supported telemetry exporters.
const (
	ExporterNone = "none"
	ExporterGCP  = "gcp"
)

// SetupOpenTelemetry installs the global propagator, tracer provider and
// meter provider. With the "gcp" exporter spans go to Cloud Trace and
// metrics to Cloud Monitoring; with "none" spans are still created so log
// correlation works, but nothing is exported.
//
// Inputs:
//   - ctx: Used for resource detection.
//   - config: Supplies the service name, project and exporter.
//
// Outputs:
//   - shutdown: Flushes and stops every provider; call it before exit. It is
//     nil when err is not nil.
//   - err: Exporter or resource failures. Nothing is installed on failure.
func SetupOpenTelemetry(ctx context.Context, config *cloud.Config) (shutdown func(context.Context) error, err error) {
	var shutdownFuncs []func(context.Context) error
	shutdown = func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	otel.SetTextMapPropagator(autoprop.NewTextMapPropagator())

	detectors := []resource.Option{
		resource.WithTelemetrySDK(),
		resource.WithAttributes(semconv.ServiceNameKey.String(config.Application.Name)),
	}
	if config.Telemetry.Exporter == ExporterGCP {
		detectors = append(detectors, resource.WithDetectors(gcp.NewDetector()))
	}
	res, err := resource.New(ctx, detectors...)
	if errors.Is(err, resource.ErrPartialResource) || errors.Is(err, resource.ErrSchemaURLConflict) {
		slog.Warn("partial resource detection", "error", err)
	} else if err != nil {
		return nil, err
	}

	switch config.Telemetry.Exporter {
	case ExporterGCP:
		// Both exporters are created before any provider is installed, so a
		// failure leaves the global providers untouched.
		traceExporter, err := texporter.New(texporter.WithProjectID(config.Application.GoogleProjectId))
		if err != nil {
			return nil, err
		}
		metricExporter, err := mexporter.New(mexporter.WithProjectID(config.Application.GoogleProjectId))
		if err != nil {
			return nil, errors.Join(err, traceExporter.Shutdown(ctx))
		}

		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter), sdktrace.WithResource(res))
		shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
		otel.SetTracerProvider(tp)

		mp := metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(metricExporter)),
			metric.WithResource(res))
		shutdownFuncs = append(shutdownFuncs, mp.Shutdown)
		otel.SetMeterProvider(mp)
	case ExporterNone, "":
		tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
		shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
		otel.SetTracerProvider(tp)
	default:
		return nil, errors.New("unknown telemetry exporter " + config.Telemetry.Exporter)
	}

	return shutdown, nil
}
