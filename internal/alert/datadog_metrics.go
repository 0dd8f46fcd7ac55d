package alert

import (
	"context"
	"fmt"
	"net/http"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
	"go.opentelemetry.io/otel/attribute"
)

const (
	metricEventCount = "flappy_detector.event_count"
	metricSpread     = "flappy_detector.spread"
)

// DatadogMetricsAPI defines the Datadog metrics operations required for alerting.
type DatadogMetricsAPI interface {
	SubmitMetrics(
		ctx context.Context,
		body datadogV2.MetricPayload,
		o ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// DatadogMetrics reports the count and spread of flapping groups as gauges.
type DatadogMetrics struct {
	client DatadogMetricsAPI
	auth   DatadogAuth
}

// NewDatadogMetrics creates a new DatadogMetrics sender.
func NewDatadogMetrics(client DatadogMetricsAPI, auth DatadogAuth) *DatadogMetrics {
	return &DatadogMetrics{
		client: client,
		auth:   auth,
	}
}

// Send submits the event count and spread of the alert.
func (d *DatadogMetrics) Send(ctx context.Context, alert *Alert) error {
	ctx, span := tracer.Start(ctx, "alert.datadog_metrics")
	defer span.End()
	span.SetAttributes(attribute.String("alert.aggregation_key", alert.AggregationKey))

	ts := alert.DetectedAt.Unix()
	series := func(name string, value int) datadogV2.MetricSeries {
		return datadogV2.MetricSeries{
			Metric: name,
			Type:   datadogV2.METRICINTAKETYPE_GAUGE.Ptr(),
			Points: []datadogV2.MetricPoint{{
				Timestamp: datadog.PtrInt64(ts),
				Value:     datadog.PtrFloat64(float64(value)),
			}},
			Tags: alert.Tags,
		}
	}

	body := datadogV2.MetricPayload{
		Series: []datadogV2.MetricSeries{
			series(metricEventCount, alert.Count),
			series(metricSpread, alert.Spread),
		},
	}

	if _, _, err := d.client.SubmitMetrics(d.auth.Context(ctx), body); err != nil {
		return fmt.Errorf("cannot submit datadog metrics for %q: %w", alert.AggregationKey, err)
	}

	return nil
}
