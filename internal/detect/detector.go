// Package detect finds deployment groups whose instances keep starting and
// stopping without the group changing size.
package detect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/flappy-detector/internal/alert"
	"github.com/ab0utbla-k/flappy-detector/internal/events"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/flappy-detector/internal/detect")

// Thresholds parameterize flap detection.
type Thresholds struct {
	// MaxEventAge bounds how far back records are considered.
	MaxEventAge time.Duration
	// MinNumberOfEvents is the least number of events a flapping group has.
	MinNumberOfEvents int
	// MinSpread is the largest net change in size a flapping group has.
	MinSpread int
}

// Validate checks the thresholds are usable.
func (t Thresholds) Validate() error {
	if t.MaxEventAge <= 0 {
		return fmt.Errorf("max event age must be positive, got %s", t.MaxEventAge)
	}
	if t.MinNumberOfEvents < 1 {
		return fmt.Errorf("min number of events must be >= 1, got %d", t.MinNumberOfEvents)
	}
	if t.MinSpread < 0 {
		return fmt.Errorf("min spread must be >= 0, got %d", t.MinSpread)
	}
	return nil
}

// RecordScanner reads every record at or after a cutoff.
type RecordScanner interface {
	ScanSince(ctx context.Context, cutoff time.Time) ([]events.Record, error)
}

// Detector scans recent records and alerts on flapping groups.
type Detector struct {
	scanner    RecordScanner
	sender     alert.Sender
	thresholds Thresholds
	logger     *slog.Logger
	now        func() time.Time
}

// NewDetector creates a new Detector. It fails on invalid thresholds.
func NewDetector(
	scanner RecordScanner,
	sender alert.Sender,
	thresholds Thresholds,
	logger *slog.Logger,
) (*Detector, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}

	return &Detector{
		scanner:    scanner,
		sender:     sender,
		thresholds: thresholds,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// DetectFlaps runs one detection pass. The sender is not called at all when
// nothing is flapping.
func (d *Detector) DetectFlaps(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "detect.detect_flaps")
	defer span.End()

	now := d.now()
	cutoff := now.Add(-d.thresholds.MaxEventAge)

	records, err := d.scanner.ScanSince(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("cannot read events since %s: %w", cutoff.Format(time.RFC3339), err)
	}

	candidates := Aggregate(ctx, records, d.logger)
	flapping := d.classify(candidates)

	span.SetAttributes(
		attribute.Int("detect.records", len(records)),
		attribute.Int("detect.candidates", len(candidates)),
		attribute.Int("detect.flapping", len(flapping)),
	)

	d.logger.InfoContext(
		ctx,
		"flap detection completed",
		slog.Int("records", len(records)),
		slog.Int("candidates", len(candidates)),
		slog.Int("flapping", len(flapping)),
	)

	if len(flapping) == 0 {
		return nil
	}

	return d.sendAlerts(ctx, flapping, now)
}

func (d *Detector) classify(candidates []Candidate) []Candidate {
	var flapping []Candidate
	for _, c := range candidates {
		if c.Flapping(d.thresholds) {
			flapping = append(flapping, c)
		}
	}
	return flapping
}

func (d *Detector) sendAlerts(ctx context.Context, flapping []Candidate, now time.Time) error {
	var errs []error

	for _, c := range flapping {
		a := newAlert(c, now)

		d.logger.InfoContext(
			ctx,
			"sending flapping alert",
			slog.String("aggregationKey", a.AggregationKey),
			slog.Int("count", c.Count),
			slog.Int("spread", c.Spread),
		)

		if err := d.sender.Send(ctx, a); err != nil {
			d.logger.ErrorContext(
				ctx,
				"cannot send flapping alert",
				slog.String("aggregationKey", a.AggregationKey),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cannot send %d of %d alerts: %w", len(errs), len(flapping), errors.Join(errs...))
	}

	return nil
}
