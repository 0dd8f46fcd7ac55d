package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ab0utbla-k/flappy-detector/internal/events"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const stateChangeMessage = `{
  "version": "0",
  "id": "7bf73129-1428-4cd3-a780-95db273d1602",
  "detail-type": "EC2 Instance State-change Notification",
  "source": "aws.ec2",
  "account": "123456789012",
  "time": "2020-01-01T12:30:15Z",
  "region": "us-east-1",
  "resources": ["arn:aws:ec2:us-east-1:123456789012:instance/i-abcd1111"],
  "detail": {"instance-id": "i-abcd1111", "state": "terminated"}
}`

func snsEvent(messages ...string) lambdaevents.SNSEvent {
	var event lambdaevents.SNSEvent
	for i, msg := range messages {
		event.Records = append(event.Records, lambdaevents.SNSEventRecord{
			EventSource: "aws:sns",
			SNS: lambdaevents.SNSEntity{
				MessageID: string(rune('a' + i)),
				Message:   msg,
			},
		})
	}
	return event
}

func TestIngestHandler_ParsesStateChanges(t *testing.T) {
	mockIngester := new(IngesterMock)
	h := NewIngestHandler(mockIngester, discard)

	want := []events.LifecycleEvent{{
		Account:    "123456789012",
		Region:     "us-east-1",
		InstanceID: "i-abcd1111",
		State:      events.StateTerminated,
		Time:       time.Date(2020, 1, 1, 12, 30, 15, 0, time.UTC),
	}}
	mockIngester.On("Ingest", mock.Anything, want).Return(nil)

	err := h.HandleRequest(context.Background(), snsEvent(stateChangeMessage))
	require.NoError(t, err)
	mockIngester.AssertExpectations(t)
}

func TestIngestHandler_SkipsUnparsableMessages(t *testing.T) {
	mockIngester := new(IngesterMock)
	h := NewIngestHandler(mockIngester, discard)

	mockIngester.On("Ingest", mock.Anything, mock.MatchedBy(func(batch []events.LifecycleEvent) bool {
		return len(batch) == 1 && batch[0].InstanceID == "i-abcd1111"
	})).Return(nil)

	pending := `{"account": "123456789012", "region": "us-east-1", "time": "2020-01-01T12:30:15Z",
	  "detail": {"instance-id": "i-abcd2222", "state": "pending"}}`

	err := h.HandleRequest(context.Background(), snsEvent("not json", pending, stateChangeMessage))
	require.NoError(t, err)
	mockIngester.AssertExpectations(t)
}

func TestIngestHandler_NothingToIngest(t *testing.T) {
	mockIngester := new(IngesterMock)
	h := NewIngestHandler(mockIngester, discard)

	err := h.HandleRequest(context.Background(), snsEvent("{}"))
	require.NoError(t, err)
	mockIngester.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
}

func TestIngestHandler_IngestError(t *testing.T) {
	mockIngester := new(IngesterMock)
	h := NewIngestHandler(mockIngester, discard)

	mockIngester.On("Ingest", mock.Anything, mock.Anything).Return(errors.New("access denied"))

	err := h.HandleRequest(context.Background(), snsEvent(stateChangeMessage))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestDetectHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "success"},
		{name: "detection fails", err: errors.New("scan failed"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDetector := new(FlapDetectorMock)
			mockDetector.On("DetectFlaps", mock.Anything).Return(tt.err)

			h := NewDetectHandler(mockDetector, discard)
			err := h.HandleRequest(context.Background(), lambdaevents.CloudWatchEvent{
				Source:     "aws.events",
				DetailType: "Scheduled Event",
			})

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			mockDetector.AssertExpectations(t)
		})
	}
}
