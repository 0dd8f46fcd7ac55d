package alert

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.opentelemetry.io/otel/attribute"
)

const (
	eventSource     = "flappy.detector"
	eventDetailType = "Flapping Group Detected"
)

// EventBridgeAPI defines required EventBridge operations.
type EventBridgeAPI interface {
	PutEvents(
		ctx context.Context,
		params *eventbridge.PutEventsInput,
		optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventBridge publishes alerts as events on an event bus.
type EventBridge struct {
	client       EventBridgeAPI
	eventBusName string
}

// NewEventBridge creates a new EventBridge sender.
func NewEventBridge(client EventBridgeAPI, eventBusName string) *EventBridge {
	return &EventBridge{
		client:       client,
		eventBusName: eventBusName,
	}
}

// Send puts the alert on the event bus as JSON detail.
func (e *EventBridge) Send(ctx context.Context, alert *Alert) error {
	ctx, span := tracer.Start(ctx, "alert.eventbridge")
	defer span.End()
	span.SetAttributes(
		attribute.String("eventbus.name", e.eventBusName),
		attribute.String("alert.aggregation_key", alert.AggregationKey),
	)

	detail, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("cannot marshal alert: %w", err)
	}

	input := &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			Detail:       aws.String(string(detail)),
			DetailType:   aws.String(eventDetailType),
			EventBusName: aws.String(e.eventBusName),
			Source:       aws.String(eventSource),
		}},
	}

	out, err := e.client.PutEvents(ctx, input)
	if err != nil {
		return fmt.Errorf("cannot put event: %w", err)
	}

	if out.FailedEntryCount > 0 {
		entry := out.Entries[0]
		return fmt.Errorf("event rejected: %s - %s",
			aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
	}

	return nil
}
