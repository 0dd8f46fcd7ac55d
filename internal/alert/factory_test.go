package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ab0utbla-k/flappy-detector/internal/config"
)

var testAWSConfig = aws.Config{Region: "us-east-1"}

func newDetectConfig(alert config.AlertTarget, metric config.MetricTarget) *config.Detect {
	return &config.Detect{
		AlertTarget:            alert,
		MetricTarget:           metric,
		DatadogAPIKeyParameter: "/dd/api",
		DatadogAppKeyParameter: "/dd/app",
		DatadogSite:            "datadoghq.com",
		SNSTopicARN:            "arn:aws:sns:us-east-1:123456789012:flaps",
		EventBusName:           "default",
		MetricNamespace:        "FlappyDetector",
	}
}

func TestNewSender_Datadog(t *testing.T) {
	secrets := new(SecretGetterMock)
	secrets.On("Get", mock.Anything, "/dd/api").Return("api", nil).Once()
	secrets.On("Get", mock.Anything, "/dd/app").Return("app", nil).Once()

	sender, err := NewSender(context.Background(), testAWSConfig, newDetectConfig(config.AlertDatadog, config.MetricNone), secrets)
	require.NoError(t, err)

	dd, ok := sender.(*DatadogEvents)
	require.True(t, ok)
	assert.Equal(t, DatadogAuth{APIKey: "api", AppKey: "app", Site: "datadoghq.com"}, dd.auth)
	secrets.AssertExpectations(t)
}

func TestNewSender_DatadogWithMetrics(t *testing.T) {
	secrets := new(SecretGetterMock)
	secrets.On("Get", mock.Anything, mock.Anything).Return("key", nil).Twice()

	sender, err := NewSender(context.Background(), testAWSConfig, newDetectConfig(config.AlertDatadog, config.MetricDatadog), secrets)
	require.NoError(t, err)

	multi, ok := sender.(Multi)
	require.True(t, ok)
	require.Len(t, multi, 2)
	assert.IsType(t, &DatadogEvents{}, multi[0])
	assert.IsType(t, &DatadogMetrics{}, multi[1])
}

func TestNewSender_SNSDoesNotReadSecrets(t *testing.T) {
	secrets := new(SecretGetterMock)

	sender, err := NewSender(context.Background(), testAWSConfig, newDetectConfig(config.AlertSNS, config.MetricNone), secrets)
	require.NoError(t, err)
	assert.IsType(t, &SNS{}, sender)
	secrets.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestNewSender_EventBridgeWithCloudWatch(t *testing.T) {
	sender, err := NewSender(context.Background(), testAWSConfig, newDetectConfig(config.AlertEventBridge, config.MetricCloudWatch), new(SecretGetterMock))
	require.NoError(t, err)

	multi, ok := sender.(Multi)
	require.True(t, ok)
	require.Len(t, multi, 2)
	assert.IsType(t, &EventBridge{}, multi[0])
	assert.IsType(t, &CloudWatchMetrics{}, multi[1])
}

func TestNewSender_SecretError(t *testing.T) {
	secrets := new(SecretGetterMock)
	secrets.On("Get", mock.Anything, "/dd/api").Return("", errors.New("access denied")).Once()

	sender, err := NewSender(context.Background(), testAWSConfig, newDetectConfig(config.AlertDatadog, config.MetricNone), secrets)
	require.Error(t, err)
	assert.Nil(t, sender)
	assert.Contains(t, err.Error(), "datadog api key")
}

func TestNewSender_UnknownTarget(t *testing.T) {
	sender, err := NewSender(context.Background(), testAWSConfig, newDetectConfig("pagerduty", config.MetricNone), new(SecretGetterMock))
	require.Error(t, err)
	assert.Nil(t, sender)
	assert.Contains(t, err.Error(), "unknown alert target")
}
