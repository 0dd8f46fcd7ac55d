package alert

import (
	"context"
	"net/http"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV1"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/mock"
)

// DatadogEventsAPIMock is a mock implementation of the DatadogEventsAPI interface.
type DatadogEventsAPIMock struct {
	mock.Mock
}

func (m *DatadogEventsAPIMock) CreateEvent(ctx context.Context, body datadogV1.EventCreateRequest) (datadogV1.EventCreateResponse, *http.Response, error) {
	args := m.Called(ctx, body)
	return datadogV1.EventCreateResponse{}, nil, args.Error(0)
}

// DatadogMetricsAPIMock is a mock implementation of the DatadogMetricsAPI interface.
type DatadogMetricsAPIMock struct {
	mock.Mock
}

func (m *DatadogMetricsAPIMock) SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, o ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error) {
	args := m.Called(ctx, body)
	return datadogV2.IntakePayloadAccepted{}, nil, args.Error(0)
}

// SNSAPIMock is a mock implementation of the SNSAPI interface.
type SNSAPIMock struct {
	mock.Mock
}

func (m *SNSAPIMock) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

// EventBridgeAPIMock is a mock implementation of the EventBridgeAPI interface.
type EventBridgeAPIMock struct {
	mock.Mock
}

func (m *EventBridgeAPIMock) PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eventbridge.PutEventsOutput), args.Error(1)
}

// CloudWatchAPIMock is a mock implementation of the CloudWatchAPI interface.
type CloudWatchAPIMock struct {
	mock.Mock
}

func (m *CloudWatchAPIMock) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cloudwatch.PutMetricDataOutput), args.Error(1)
}

// SecretGetterMock is a mock implementation of the SecretGetter interface.
type SecretGetterMock struct {
	mock.Mock
}

func (m *SecretGetterMock) Get(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// SenderMock is a mock implementation of the Sender interface.
type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) Send(ctx context.Context, alert *Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}
