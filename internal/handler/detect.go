package handler

import (
	"context"
	"log/slog"

	lambdaevents "github.com/aws/aws-lambda-go/events"
)

// FlapDetector runs one detection pass.
type FlapDetector interface {
	DetectFlaps(ctx context.Context) error
}

type DetectHandler struct {
	detector FlapDetector
	logger   *slog.Logger
}

func NewDetectHandler(detector FlapDetector, logger *slog.Logger) *DetectHandler {
	return &DetectHandler{
		detector: detector,
		logger:   logger,
	}
}

// HandleRequest runs detection on a scheduled event. The payload is only logged.
func (h *DetectHandler) HandleRequest(ctx context.Context, event lambdaevents.CloudWatchEvent) error {
	h.logger.InfoContext(
		ctx,
		"received scheduled event",
		slog.String("id", event.ID),
		slog.String("source", event.Source),
		slog.Time("time", event.Time),
	)

	if err := h.detector.DetectFlaps(ctx); err != nil {
		h.logger.ErrorContext(ctx, "cannot detect flaps", slog.String("error", err.Error()))
		return err
	}

	return nil
}
