// Package events provides the lifecycle event and persisted record types shared
// by the ingest and detect Lambdas.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
)

// ErrMalformed indicates an event or record is missing a required field.
var ErrMalformed = errors.New("malformed event")

// State is an EC2 instance state as reported by EC2 state-change notifications.
type State string

const (
	StateRunning    State = "running"
	StateTerminated State = "terminated"
)

// Delta returns the change in instance count an event in this state represents.
// The boolean is false for states that do not take part in flap detection.
func (s State) Delta() (int, bool) {
	switch s {
	case StateRunning:
		return 1, true
	case StateTerminated:
		return -1, true
	default:
		return 0, false
	}
}

// LifecycleEvent is a single instance state change, before enrichment.
type LifecycleEvent struct {
	Account    string
	Region     string
	InstanceID string
	State      State
	Time       time.Time
}

type stateChangeDetail struct {
	InstanceID string `json:"instance-id"`
	State      string `json:"state"`
}

// ParseStateChange unwraps an "EC2 Instance State-change Notification" envelope.
func ParseStateChange(event lambdaevents.CloudWatchEvent) (LifecycleEvent, error) {
	var detail stateChangeDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return LifecycleEvent{}, fmt.Errorf("cannot parse event detail: %w", err)
	}

	evt := LifecycleEvent{
		Account:    event.AccountID,
		Region:     event.Region,
		InstanceID: detail.InstanceID,
		State:      State(detail.State),
		Time:       event.Time.Truncate(time.Second),
	}

	switch {
	case evt.Account == "":
		return LifecycleEvent{}, fmt.Errorf("%w: account is empty", ErrMalformed)
	case evt.Region == "":
		return LifecycleEvent{}, fmt.Errorf("%w: region is empty", ErrMalformed)
	case evt.InstanceID == "":
		return LifecycleEvent{}, fmt.Errorf("%w: instance id is empty", ErrMalformed)
	case evt.Time.IsZero():
		return LifecycleEvent{}, fmt.Errorf("%w: time is empty", ErrMalformed)
	}

	if _, ok := evt.State.Delta(); !ok {
		return LifecycleEvent{}, fmt.Errorf("%w: unsupported state %q", ErrMalformed, detail.State)
	}

	return evt, nil
}
