package ingest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ab0utbla-k/flappy-detector/internal/events"
)

// InstanceDescriberMock is a mock implementation of the InstanceDescriber interface.
type InstanceDescriberMock struct {
	mock.Mock
}

func (m *InstanceDescriberMock) DescribeInstances(ctx context.Context, account, region string, instanceIDs []string) (map[string]events.InstanceTags, error) {
	args := m.Called(ctx, account, region, instanceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]events.InstanceTags), args.Error(1)
}

// RecordWriterMock is a mock implementation of the RecordWriter interface.
type RecordWriterMock struct {
	mock.Mock
}

func (m *RecordWriterMock) Put(ctx context.Context, record events.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
