package detect

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ab0utbla-k/flappy-detector/internal/alert"
	"github.com/ab0utbla-k/flappy-detector/internal/events"
)

// RecordScannerMock is a mock implementation of the RecordScanner interface.
type RecordScannerMock struct {
	mock.Mock
}

func (m *RecordScannerMock) ScanSince(ctx context.Context, cutoff time.Time) ([]events.Record, error) {
	args := m.Called(ctx, cutoff)
	records, _ := args.Get(0).([]events.Record)
	return records, args.Error(1)
}

// SenderMock is a mock implementation of the alert.Sender interface.
type SenderMock struct {
	mock.Mock
}

func (m *SenderMock) Send(ctx context.Context, a *alert.Alert) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
