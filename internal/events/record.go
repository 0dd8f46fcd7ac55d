package events

import (
	"fmt"
	"strings"
)

// Record is an enriched lifecycle event as stored in the event table.
type Record struct {
	Account     string `dynamodbav:"account" json:"account"`
	Region      string `dynamodbav:"region" json:"region"`
	InstanceID  string `dynamodbav:"instance_id" json:"instanceID"`
	State       State  `dynamodbav:"state" json:"state"`
	Timestamp   int64  `dynamodbav:"timestamp" json:"timestamp"`
	GroupName   string `dynamodbav:"group_name" json:"groupName"`
	Application string `dynamodbav:"application,omitempty" json:"application,omitempty"`
	Environment string `dynamodbav:"environment,omitempty" json:"environment,omitempty"`
	Team        string `dynamodbav:"team,omitempty" json:"team,omitempty"`
}

// NewRecord attributes a lifecycle event to a deployment group. It returns
// false when the tags do not name a group.
func NewRecord(evt LifecycleEvent, tags InstanceTags) (Record, bool) {
	group, ok := tags.GroupName()
	if !ok {
		return Record{}, false
	}

	return Record{
		Account:     evt.Account,
		Region:      evt.Region,
		InstanceID:  evt.InstanceID,
		State:       evt.State,
		Timestamp:   evt.Time.Unix(),
		GroupName:   group,
		Application: tags.Application,
		Environment: tags.EnvironmentName(),
		Team:        tags.Team,
	}, true
}

// Validate reports whether the record carries everything flap detection needs.
func (r Record) Validate() error {
	var missing []string
	if r.Account == "" {
		missing = append(missing, "account")
	}
	if r.Region == "" {
		missing = append(missing, "region")
	}
	if r.Environment == "" {
		missing = append(missing, "environment")
	}
	if r.Application == "" {
		missing = append(missing, "application")
	}
	if r.GroupName == "" {
		missing = append(missing, "group_name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformed, strings.Join(missing, ", "))
	}

	if _, ok := r.State.Delta(); !ok {
		return fmt.Errorf("%w: unsupported state %q", ErrMalformed, r.State)
	}
	return nil
}

// Key returns the flap detection key of the record.
func (r Record) Key() GroupKey {
	return GroupKey{
		Account:     r.Account,
		Region:      r.Region,
		Environment: r.Environment,
		Application: r.Application,
		GroupName:   r.GroupName,
	}
}

// GroupKey identifies one flap detection candidate.
type GroupKey struct {
	Account     string `json:"account"`
	Region      string `json:"region"`
	Environment string `json:"environment"`
	Application string `json:"application"`
	GroupName   string `json:"groupName"`
}

// String returns the composite key, also used as the alert aggregation key.
func (k GroupKey) String() string {
	return strings.Join([]string{k.Account, k.Region, k.Environment, k.Application, k.GroupName}, "_")
}
