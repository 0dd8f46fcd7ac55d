package detect

import (
	"fmt"
	"strings"
	"time"

	"github.com/ab0utbla-k/flappy-detector/internal/alert"
)

func newAlert(c Candidate, detectedAt time.Time) *alert.Alert {
	return &alert.Alert{
		Title:          fmt.Sprintf("Flappy Detector: %s might be flapping in %s", c.Application, c.Environment),
		Text:           alertText(c),
		Severity:       alert.SeverityWarning,
		AggregationKey: c.GroupKey.String(),
		Tags:           c.Tags(),
		Group:          c.GroupKey,
		Team:           c.Team,
		Count:          c.Count,
		Spread:         c.Spread,
		DetectedAt:     detectedAt,
	}
}

// alertText renders the body as Datadog markdown, delimited by %%%.
func alertText(c Candidate) string {
	var msg strings.Builder

	msg.WriteString("%%% \n")
	msg.WriteString("This application might be flapping.\n")
	fmt.Fprintf(&msg, "There have been %d starts/stops, ", c.Count)
	fmt.Fprintf(&msg, "but the total number of instances has only changed by %d.\n", c.Spread)
	msg.WriteString("Please investigate:\n")
	msg.WriteString("  * Scaling might be configured too aggressively\n")
	msg.WriteString("  * New instances are failing to start\n")
	msg.WriteString("  * Host is undersized and failing under load\n")
	msg.WriteString(" %%%")

	return msg.String()
}
