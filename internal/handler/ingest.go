// Package handler adapts Lambda triggers to the ingest and detect pipelines.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	lambdaevents "github.com/aws/aws-lambda-go/events"

	"github.com/ab0utbla-k/flappy-detector/internal/events"
)

// Ingester persists a batch of lifecycle events.
type Ingester interface {
	Ingest(ctx context.Context, batch []events.LifecycleEvent) error
}

type IngestHandler struct {
	ingester Ingester
	logger   *slog.Logger
}

func NewIngestHandler(ingester Ingester, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		ingester: ingester,
		logger:   logger,
	}
}

// HandleRequest unwraps EC2 state-change notifications delivered over SNS.
// Messages that are not valid state changes are skipped.
func (h *IngestHandler) HandleRequest(ctx context.Context, event lambdaevents.SNSEvent) error {
	h.logger.InfoContext(ctx, "received sns event", slog.Int("records", len(event.Records)), slog.Any("event", event))

	batch := make([]events.LifecycleEvent, 0, len(event.Records))

	for _, record := range event.Records {
		evt, err := parseMessage(record.SNS.Message)
		if err != nil {
			h.logger.WarnContext(
				ctx,
				"cannot parse state change; skipping",
				slog.String("messageID", record.SNS.MessageID),
				slog.String("error", err.Error()),
			)
			continue
		}
		batch = append(batch, evt)
	}

	if len(batch) == 0 {
		h.logger.InfoContext(ctx, "no state changes to ingest")
		return nil
	}

	if err := h.ingester.Ingest(ctx, batch); err != nil {
		h.logger.ErrorContext(
			ctx,
			"cannot ingest state changes",
			slog.Int("events", len(batch)),
			slog.String("error", err.Error()),
		)
		return err
	}

	return nil
}

func parseMessage(message string) (events.LifecycleEvent, error) {
	var envelope lambdaevents.CloudWatchEvent
	if err := json.Unmarshal([]byte(message), &envelope); err != nil {
		return events.LifecycleEvent{}, fmt.Errorf("cannot decode message: %w", err)
	}
	return events.ParseStateChange(envelope)
}
