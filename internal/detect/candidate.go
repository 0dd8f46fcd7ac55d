package detect

import (
	"context"
	"log/slog"

	"github.com/ab0utbla-k/flappy-detector/internal/events"
)

// Candidate is the aggregate of every in-window record sharing a group key.
type Candidate struct {
	events.GroupKey
	Team   string
	Count  int
	Spread int
}

// Flapping reports whether the candidate churned enough without a matching
// change in size.
func (c Candidate) Flapping(t Thresholds) bool {
	return c.Count >= t.MinNumberOfEvents && abs(c.Spread) <= t.MinSpread
}

// Tags returns the alert tags of the candidate. The team tag is only present
// when a team is known.
func (c Candidate) Tags() []string {
	tags := []string{
		"account:" + c.Account,
		"region:" + c.Region,
		"environment:" + c.Environment,
		"application:" + c.Application,
		"env:" + c.Environment,
		"service:" + c.Application,
		"group_name:" + c.GroupName,
		"source:flappy_detector",
	}

	if c.Team != "" {
		tags = append(tags, "team:"+c.Team)
	}

	return tags
}

// Aggregate folds records into one candidate per group key, returned in the
// order each key was first seen. Malformed records are skipped. The team of a
// candidate is the first non-empty team encountered.
func Aggregate(ctx context.Context, records []events.Record, logger *slog.Logger) []Candidate {
	var candidates []Candidate
	index := make(map[events.GroupKey]int)

	for _, record := range records {
		if err := record.Validate(); err != nil {
			logger.WarnContext(
				ctx,
				"cannot handle record; skipping",
				slog.Any("record", record),
				slog.String("error", err.Error()),
			)
			continue
		}

		key := record.Key()
		i, ok := index[key]
		if !ok {
			i = len(candidates)
			index[key] = i
			candidates = append(candidates, Candidate{GroupKey: key})
		}

		c := &candidates[i]
		if c.Team == "" {
			c.Team = record.Team
		}

		delta, _ := record.State.Delta()
		c.Count++
		c.Spread += delta
	}

	return candidates
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
