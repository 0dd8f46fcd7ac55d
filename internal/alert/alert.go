// Package alert delivers flap alerts to Datadog, SNS, EventBridge and
// metric backends.
package alert

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/ab0utbla-k/flappy-detector/internal/events"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/flappy-detector/internal/alert")

// Severity is the alert level reported to the target.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert describes one flapping deployment group.
type Alert struct {
	Title          string          `json:"title"`
	Text           string          `json:"text"`
	Severity       Severity        `json:"severity"`
	AggregationKey string          `json:"aggregationKey"`
	Tags           []string        `json:"tags"`
	Group          events.GroupKey `json:"group"`
	Team           string          `json:"team,omitempty"`
	Count          int             `json:"count"`
	Spread         int             `json:"spread"`
	DetectedAt     time.Time       `json:"detectedAt"`
}

// Sender delivers a single alert.
type Sender interface {
	Send(ctx context.Context, alert *Alert) error
}

// Multi fans an alert out to several senders. Every sender is tried; failures
// are joined.
type Multi []Sender

// Send sends the alert to every sender.
func (m Multi) Send(ctx context.Context, alert *Alert) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
