package alert

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.opentelemetry.io/otel/attribute"
)

// SNS rejects subjects longer than 100 characters.
const maxSubjectLength = 100

// SNSAPI defines required SNS operations.
type SNSAPI interface {
	Publish(
		ctx context.Context,
		input *sns.PublishInput,
		optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNS publishes alerts to an SNS topic.
type SNS struct {
	client   SNSAPI
	topicARN string
}

// NewSNS creates a new SNS sender.
func NewSNS(client SNSAPI, topicARN string) *SNS {
	return &SNS{
		client:   client,
		topicARN: topicARN,
	}
}

// Send publishes the alert text with the aggregation key and severity as
// message attributes.
func (s *SNS) Send(ctx context.Context, alert *Alert) error {
	ctx, span := tracer.Start(ctx, "alert.sns")
	defer span.End()
	span.SetAttributes(
		attribute.String("sns.topic_arn", s.topicARN),
		attribute.String("alert.aggregation_key", alert.AggregationKey),
	)

	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(subject(alert.Title)),
		Message:  aws.String(alert.Text),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"aggregation_key": {
				DataType:    aws.String("String"),
				StringValue: aws.String(alert.AggregationKey),
			},
			"severity": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(alert.Severity)),
			},
		},
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("cannot publish to SNS: %w", err)
	}

	return nil
}

func subject(title string) string {
	runes := []rune(title)
	if len(runes) <= maxSubjectLength {
		return title
	}
	return string(runes[:maxSubjectLength-3]) + "..."
}
