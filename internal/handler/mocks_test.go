package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ab0utbla-k/flappy-detector/internal/events"
)

// IngesterMock is a mock implementation of the Ingester interface.
type IngesterMock struct {
	mock.Mock
}

func (m *IngesterMock) Ingest(ctx context.Context, batch []events.LifecycleEvent) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

// FlapDetectorMock is a mock implementation of the FlapDetector interface.
type FlapDetectorMock struct {
	mock.Mock
}

func (m *FlapDetectorMock) DetectFlaps(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
