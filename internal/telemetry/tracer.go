// Package telemetry configures OpenTelemetry tracing for the Lambdas.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"github.com/aws-observability/aws-otel-go/exporters/xrayudp"
	lambdadetector "go.opentelemetry.io/contrib/detectors/aws/lambda"
	"go.opentelemetry.io/contrib/propagators/aws/xray"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const serviceNamespace = "flappy-detector"

// NewTracerProvider exports spans to the X-Ray daemon and installs the
// provider globally. component names the Lambda ("ingest" or "detect").
func NewTracerProvider(ctx context.Context, component string) (*sdktrace.TracerProvider, error) {
	res, err := buildResource(ctx, component)
	if err != nil {
		return nil, err
	}

	exp, err := xrayudp.NewSpanExporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot create xray udp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exp)),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(xray.Propagator{})

	return tp, nil
}

func buildResource(ctx context.Context, component string) (*resource.Resource, error) {
	lambdaResource, err := lambdadetector.NewResourceDetector().Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot detect lambda resource: %w", err)
	}

	serviceName := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	if serviceName == "" {
		serviceName = serviceNamespace + "-" + component
	}

	custom := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceNamespace(serviceNamespace),
		attribute.String("flappy.component", component),
	)

	merged, err := resource.Merge(lambdaResource, custom)
	if err != nil {
		return nil, fmt.Errorf("cannot merge otel resources: %w", err)
	}

	return merged, nil
}
