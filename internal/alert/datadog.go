package alert

import (
	"context"
	"fmt"
	"net/http"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

// DatadogAuth holds the credentials and site used for Datadog API calls.
type DatadogAuth struct {
	APIKey string
	AppKey string
	Site   string
}

// Context attaches the credentials and site to ctx as the Datadog client expects.
func (a DatadogAuth) Context(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, datadog.ContextAPIKeys, map[string]datadog.APIKey{
		"apiKeyAuth": {Key: a.APIKey},
		"appKeyAuth": {Key: a.AppKey},
	})
	if a.Site != "" {
		ctx = context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{
			"site": a.Site,
		})
	}
	return ctx
}

// NewDatadogAPIClient creates a Datadog API client with a traced HTTP transport.
func NewDatadogAPIClient() *datadog.APIClient {
	cfg := datadog.NewConfiguration()
	cfg.HTTPClient = &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return datadog.NewAPIClient(cfg)
}

// DatadogEventsAPI defines the Datadog events operations required for alerting.
type DatadogEventsAPI interface {
	CreateEvent(
		ctx context.Context,
		body datadogV1.EventCreateRequest) (datadogV1.EventCreateResponse, *http.Response, error)
}

// DatadogEvents sends alerts as Datadog events. Events sharing an aggregation
// key are rolled up by Datadog.
type DatadogEvents struct {
	client DatadogEventsAPI
	auth   DatadogAuth
}

// NewDatadogEvents creates a new DatadogEvents sender.
func NewDatadogEvents(client DatadogEventsAPI, auth DatadogAuth) *DatadogEvents {
	return &DatadogEvents{
		client: client,
		auth:   auth,
	}
}

// Send creates one Datadog event for the alert. No host is attached.
func (d *DatadogEvents) Send(ctx context.Context, alert *Alert) error {
	ctx, span := tracer.Start(ctx, "alert.datadog_events")
	defer span.End()
	span.SetAttributes(attribute.String("alert.aggregation_key", alert.AggregationKey))

	body := datadogV1.EventCreateRequest{
		Title:          alert.Title,
		Text:           alert.Text,
		AlertType:      eventAlertType(alert.Severity).Ptr(),
		AggregationKey: datadog.PtrString(alert.AggregationKey),
		Tags:           alert.Tags,
	}

	_, _, err := d.client.CreateEvent(d.auth.Context(ctx), body)
	if err != nil {
		return fmt.Errorf("cannot create datadog event for %q: %w", alert.AggregationKey, err)
	}

	return nil
}

func eventAlertType(s Severity) datadogV1.EventAlertType {
	switch s {
	case SeverityInfo:
		return datadogV1.EVENTALERTTYPE_INFO
	case SeverityError:
		return datadogV1.EVENTALERTTYPE_ERROR
	default:
		return datadogV1.EVENTALERTTYPE_WARNING
	}
}
