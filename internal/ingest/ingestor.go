// Package ingest attributes EC2 lifecycle events to deployment groups and
// stores them for flap detection.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/flappy-detector/internal/events"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/flappy-detector/internal/ingest")

// InstanceDescriber looks up instance tags in bulk for one account and region.
type InstanceDescriber interface {
	DescribeInstances(
		ctx context.Context,
		account, region string,
		instanceIDs []string,
	) (map[string]events.InstanceTags, error)
}

// RecordWriter persists a single enriched record.
type RecordWriter interface {
	Put(ctx context.Context, record events.Record) error
}

// Ingestor enriches lifecycle events with deployment group metadata and
// writes them to the event store.
type Ingestor struct {
	describer InstanceDescriber
	writer    RecordWriter
	logger    *slog.Logger
}

// NewIngestor creates a new Ingestor.
func NewIngestor(describer InstanceDescriber, writer RecordWriter, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		describer: describer,
		writer:    writer,
		logger:    logger,
	}
}

// partition holds the events of one account and region, in arrival order.
type partition struct {
	account string
	region  string
	events  []events.LifecycleEvent
}

// Ingest groups, enriches and stores a batch of lifecycle events. Events that
// cannot be attributed to a group are dropped. Store failures do not stop the
// remaining records from being written; they are returned joined.
func (i *Ingestor) Ingest(ctx context.Context, batch []events.LifecycleEvent) error {
	ctx, span := tracer.Start(ctx, "ingest.ingest")
	defer span.End()
	span.SetAttributes(attribute.Int("ingest.events", len(batch)))

	partitions := groupEvents(batch)

	records, err := i.enrich(ctx, partitions)
	if err != nil {
		return err
	}

	span.SetAttributes(attribute.Int("ingest.records", len(records)))

	return i.persist(ctx, records)
}

// groupEvents partitions events by account, then region. Partitions keep the
// order in which their first event arrived.
func groupEvents(batch []events.LifecycleEvent) []*partition {
	var partitions []*partition
	byAccount := make(map[string]map[string]*partition)

	for _, evt := range batch {
		byRegion, ok := byAccount[evt.Account]
		if !ok {
			byRegion = make(map[string]*partition)
			byAccount[evt.Account] = byRegion
		}

		p, ok := byRegion[evt.Region]
		if !ok {
			p = &partition{account: evt.Account, region: evt.Region}
			byRegion[evt.Region] = p
			partitions = append(partitions, p)
		}

		p.events = append(p.events, evt)
	}

	return partitions
}

func (i *Ingestor) enrich(ctx context.Context, partitions []*partition) ([]events.Record, error) {
	var records []events.Record

	for _, p := range partitions {
		tags, err := i.describer.DescribeInstances(ctx, p.account, p.region, p.instanceIDs())
		if err != nil {
			return nil, fmt.Errorf("cannot look up metadata for %s/%s: %w", p.account, p.region, err)
		}

		for _, evt := range p.events {
			instanceTags, ok := tags[evt.InstanceID]
			if !ok {
				i.logger.WarnContext(
					ctx,
					"instance metadata not found; ignoring event",
					slog.String("instanceID", evt.InstanceID),
					slog.String("account", evt.Account),
					slog.String("region", evt.Region),
					slog.String("state", string(evt.State)),
				)
				continue
			}

			record, ok := events.NewRecord(evt, instanceTags)
			if !ok {
				i.logger.WarnContext(
					ctx,
					"event has no associated group; ignoring event",
					slog.String("instanceID", evt.InstanceID),
					slog.String("account", evt.Account),
					slog.String("region", evt.Region),
					slog.String("state", string(evt.State)),
					slog.Any("tags", instanceTags),
				)
				continue
			}

			records = append(records, record)
		}
	}

	return records, nil
}

func (i *Ingestor) persist(ctx context.Context, records []events.Record) error {
	var errs []error

	for _, record := range records {
		if err := i.writer.Put(ctx, record); err != nil {
			i.logger.ErrorContext(
				ctx,
				"cannot store record",
				slog.String("instanceID", record.InstanceID),
				slog.String("groupName", record.GroupName),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cannot store %d of %d records: %w", len(errs), len(records), errors.Join(errs...))
	}

	i.logger.InfoContext(ctx, "records stored", slog.Int("records", len(records)))

	return nil
}

// instanceIDs returns the distinct instance ids of the partition.
func (p *partition) instanceIDs() []string {
	seen := make(map[string]struct{}, len(p.events))
	ids := make([]string, 0, len(p.events))

	for _, evt := range p.events {
		if _, ok := seen[evt.InstanceID]; ok {
			continue
		}
		seen[evt.InstanceID] = struct{}{}
		ids = append(ids, evt.InstanceID)
	}

	return ids
}
