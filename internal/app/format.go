package app

import (
	"fmt"
	"time"

	"obscount/internal/export"
)

// FormatClock renders a countdown as m:ss.
func FormatClock(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	seconds := int(remaining.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatDuration renders a session duration as "Xm Ys".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// FormatTimestamp renders a session time the same way the CSV export does.
func FormatTimestamp(timestamp time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return timestamp.In(loc).Format(export.DateLayout)
}
