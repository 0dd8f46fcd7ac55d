package alert

import (
	"context"
	"fmt"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/ab0utbla-k/flappy-detector/internal/config"
)

// SecretGetter reads a secret value by name.
type SecretGetter interface {
	Get(ctx context.Context, name string) (string, error)
}

// NewSender creates the Sender for the configured alert target, paired with
// the configured metric target when there is one.
func NewSender(ctx context.Context, awsCfg aws.Config, cfg *config.Detect, secrets SecretGetter) (Sender, error) {
	var (
		auth     DatadogAuth
		ddClient *datadog.APIClient
	)

	if cfg.UsesDatadog() {
		var err error
		if auth, err = loadDatadogAuth(ctx, cfg, secrets); err != nil {
			return nil, err
		}
		ddClient = NewDatadogAPIClient()
	}

	var primary Sender
	switch cfg.AlertTarget {
	case config.AlertDatadog:
		primary = NewDatadogEvents(datadogV1.NewEventsApi(ddClient), auth)

	case config.AlertSNS:
		primary = NewSNS(sns.NewFromConfig(awsCfg), cfg.SNSTopicARN)

	case config.AlertEventBridge:
		primary = NewEventBridge(eventbridge.NewFromConfig(awsCfg), cfg.EventBusName)

	default:
		return nil, fmt.Errorf("unknown alert target: %s", cfg.AlertTarget)
	}

	switch cfg.MetricTarget {
	case config.MetricNone, "":
		return primary, nil

	case config.MetricDatadog:
		return Multi{primary, NewDatadogMetrics(datadogV2.NewMetricsApi(ddClient), auth)}, nil

	case config.MetricCloudWatch:
		return Multi{primary, NewCloudWatchMetrics(cloudwatch.NewFromConfig(awsCfg), cfg.MetricNamespace)}, nil

	default:
		return nil, fmt.Errorf("unknown metric target: %s", cfg.MetricTarget)
	}
}

func loadDatadogAuth(ctx context.Context, cfg *config.Detect, secrets SecretGetter) (DatadogAuth, error) {
	apiKey, err := secrets.Get(ctx, cfg.DatadogAPIKeyParameter)
	if err != nil {
		return DatadogAuth{}, fmt.Errorf("cannot load datadog api key: %w", err)
	}

	appKey, err := secrets.Get(ctx, cfg.DatadogAppKeyParameter)
	if err != nil {
		return DatadogAuth{}, fmt.Errorf("cannot load datadog app key: %w", err)
	}

	return DatadogAuth{
		APIKey: apiKey,
		AppKey: appKey,
		Site:   cfg.DatadogSite,
	}, nil
}
