package alert

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.opentelemetry.io/otel/attribute"
)

// CloudWatchAPI defines the CloudWatch operations required for metric alerts.
type CloudWatchAPI interface {
	PutMetricData(
		ctx context.Context,
		params *cloudwatch.PutMetricDataInput,
		optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics reports the count and spread of flapping groups as
// custom CloudWatch metrics, dimensioned by group key.
type CloudWatchMetrics struct {
	client    CloudWatchAPI
	namespace string
}

// NewCloudWatchMetrics creates a new CloudWatchMetrics sender.
func NewCloudWatchMetrics(client CloudWatchAPI, namespace string) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		client:    client,
		namespace: namespace,
	}
}

// Send puts the EventCount and Spread metrics of the alert.
func (c *CloudWatchMetrics) Send(ctx context.Context, alert *Alert) error {
	ctx, span := tracer.Start(ctx, "alert.cloudwatch_metrics")
	defer span.End()
	span.SetAttributes(
		attribute.String("cloudwatch.namespace", c.namespace),
		attribute.String("alert.aggregation_key", alert.AggregationKey),
	)

	dimensions := []types.Dimension{
		{Name: aws.String("Account"), Value: aws.String(alert.Group.Account)},
		{Name: aws.String("Region"), Value: aws.String(alert.Group.Region)},
		{Name: aws.String("Environment"), Value: aws.String(alert.Group.Environment)},
		{Name: aws.String("Application"), Value: aws.String(alert.Group.Application)},
		{Name: aws.String("GroupName"), Value: aws.String(alert.Group.GroupName)},
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(c.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("EventCount"),
				Dimensions: dimensions,
				Timestamp:  aws.Time(alert.DetectedAt),
				Unit:       types.StandardUnitCount,
				Value:      aws.Float64(float64(alert.Count)),
			},
			{
				MetricName: aws.String("Spread"),
				Dimensions: dimensions,
				Timestamp:  aws.Time(alert.DetectedAt),
				Unit:       types.StandardUnitCount,
				Value:      aws.Float64(float64(alert.Spread)),
			},
		},
	}

	if _, err := c.client.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("cannot put metric data to %q: %w", c.namespace, err)
	}

	return nil
}
