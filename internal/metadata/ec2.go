// Package metadata looks up EC2 instance tags across accounts.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ab0utbla-k/flappy-detector/internal/events"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/flappy-detector/internal/metadata")

// EC2 limits the number of values in a single filter.
const filterBatchSize = 200

// EC2API defines the EC2 operations required for metadata lookup.
type EC2API interface {
	DescribeInstances(
		ctx context.Context,
		params *ec2.DescribeInstancesInput,
		optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// Provider resolves instance tags through per-account EC2 clients.
type Provider struct {
	clients ClientFactory
	logger  *slog.Logger
}

// NewProvider creates a new Provider.
func NewProvider(clients ClientFactory, logger *slog.Logger) *Provider {
	return &Provider{
		clients: clients,
		logger:  logger,
	}
}

// DescribeInstances returns the attribution tags of every instance that could
// be found. Instances EC2 no longer knows about are absent from the result
// rather than failing the call.
func (p *Provider) DescribeInstances(
	ctx context.Context,
	account, region string,
	instanceIDs []string,
) (map[string]events.InstanceTags, error) {
	ctx, span := tracer.Start(ctx, "metadata.describe_instances")
	defer span.End()
	span.SetAttributes(
		attribute.String("aws.account", account),
		attribute.String("aws.region", region),
		attribute.Int("ec2.instance_count", len(instanceIDs)),
	)

	client, err := p.clients.EC2(ctx, account, region)
	if err != nil {
		return nil, fmt.Errorf("cannot create ec2 client for %s/%s: %w", account, region, err)
	}

	result := make(map[string]events.InstanceTags, len(instanceIDs))

	for i := 0; i < len(instanceIDs); i += filterBatchSize {
		end := min(i+filterBatchSize, len(instanceIDs))

		if err := p.describeBatch(ctx, client, instanceIDs[i:end], result); err != nil {
			p.logger.ErrorContext(
				ctx,
				"ec2 describe instances failed",
				slog.String("account", account),
				slog.String("region", region),
				slog.String("errorCode", apiErrorCode(err)),
			)
			return nil, fmt.Errorf("cannot describe instances in %s/%s: %w", account, region, err)
		}
	}

	if missing := len(instanceIDs) - len(result); missing > 0 {
		p.logger.InfoContext(
			ctx,
			"some instances were not returned by ec2",
			slog.String("account", account),
			slog.String("region", region),
			slog.Int("missing", missing),
		)
	}

	return result, nil
}

// describeBatch uses an instance-id filter rather than InstanceIds, which
// fails the whole request when a single id is unknown.
func (p *Provider) describeBatch(
	ctx context.Context,
	client EC2API,
	instanceIDs []string,
	result map[string]events.InstanceTags,
) error {
	paginator := ec2.NewDescribeInstancesPaginator(client, &ec2.DescribeInstancesInput{
		Filters: []types.Filter{{
			Name:   aws.String("instance-id"),
			Values: instanceIDs,
		}},
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}

		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				result[aws.ToString(instance.InstanceId)] = events.NewInstanceTags(tagMap(instance.Tags))
			}
		}
	}

	return nil
}

func tagMap(tags []types.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, tag := range tags {
		m[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return m
}

// apiErrorCode extracts the AWS error code, e.g. UnauthorizedOperation when the
// cross-account role is missing permissions.
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return "Unknown"
}
