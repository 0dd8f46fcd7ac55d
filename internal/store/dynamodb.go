// Package store persists enriched lifecycle records in DynamoDB.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/flappy-detector/internal/events"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/flappy-detector/internal/store")

// DynamoDBAPI defines the DynamoDB operations required by the event store.
type DynamoDBAPI interface {
	PutItem(
		ctx context.Context,
		params *dynamodb.PutItemInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)

	Scan(
		ctx context.Context,
		params *dynamodb.ScanInput,
		optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDB is an event store backed by a single DynamoDB table.
type DynamoDB struct {
	client DynamoDBAPI
	table  string
	logger *slog.Logger
}

// NewDynamoDB creates a new DynamoDB event store for the given table.
func NewDynamoDB(client DynamoDBAPI, table string, logger *slog.Logger) *DynamoDB {
	return &DynamoDB{
		client: client,
		table:  table,
		logger: logger,
	}
}

// Put writes a single record.
func (s *DynamoDB) Put(ctx context.Context, record events.Record) error {
	ctx, span := tracer.Start(ctx, "store.put")
	defer span.End()
	span.SetAttributes(
		attribute.String("dynamodb.table", s.table),
		attribute.String("ec2.instance_id", record.InstanceID),
	)

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("cannot marshal record for %q: %w", record.InstanceID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("cannot put record for %q into %q: %w", record.InstanceID, s.table, err)
	}

	return nil
}

// ScanSince returns every record with a timestamp at or after cutoff. The scan
// is strongly consistent and fully drained before returning. Items that cannot
// be decoded are skipped.
func (s *DynamoDB) ScanSince(ctx context.Context, cutoff time.Time) ([]events.Record, error) {
	ctx, span := tracer.Start(ctx, "store.scan")
	defer span.End()
	span.SetAttributes(
		attribute.String("dynamodb.table", s.table),
		attribute.Int64("store.cutoff", cutoff.Unix()),
	)

	filter := expression.Name("timestamp").GreaterThanEqual(expression.Value(cutoff.Unix()))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("cannot build scan filter: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(true),
	})

	var records []events.Record
	pages := 0

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot scan %q on next page: %w", s.table, err)
		}
		pages++

		for _, item := range page.Items {
			var record events.Record
			if err := attributevalue.UnmarshalMap(item, &record); err != nil {
				s.logger.WarnContext(
					ctx,
					"cannot decode record; skipping",
					slog.String("table", s.table),
					slog.Any("item", item),
					slog.String("error", err.Error()),
				)
				continue
			}
			records = append(records, record)
		}
	}

	span.SetAttributes(
		attribute.Int("store.pages", pages),
		attribute.Int("store.records", len(records)),
	)

	return records, nil
}
