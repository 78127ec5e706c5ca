// Package export renders saved sessions as CSV.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"obscount/internal/core/model"
)

const (
	// MIMEType is the content type of the export file.
	MIMEType = "text/csv"

	// DateLayout matches the browser's en-US toLocaleString output.
	DateLayout = "1/2/2006, 3:04:05 PM"

	fileNamePrefix = "observation-sessions-"
)

// Columns returns every distinct counter name across sessions in first-seen
// order.
func Columns(sessions []model.Session) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, session := range sessions {
		for _, counter := range session.Counters {
			if _, ok := seen[counter.Name]; ok {
				continue
			}
			seen[counter.Name] = struct{}{}
			names = append(names, counter.Name)
		}
	}
	return names
}

// CSV renders sessions in list order. It reports false when there is
// nothing to export. Only the date field is quoted.
func CSV(sessions []model.Session, loc *time.Location) (string, bool) {
	if len(sessions) == 0 {
		return "", false
	}
	if loc == nil {
		loc = time.Local
	}

	names := Columns(sessions)
	var builder strings.Builder
	builder.WriteString("Date,Duration (seconds)")
	for _, name := range names {
		builder.WriteByte(',')
		builder.WriteString(name)
	}
	builder.WriteByte('\n')

	for _, session := range sessions {
		fmt.Fprintf(&builder, "%q,%d", session.Timestamp.In(loc).Format(DateLayout), session.Duration)
		for _, name := range names {
			count, _ := session.Count(name)
			builder.WriteByte(',')
			builder.WriteString(strconv.Itoa(count))
		}
		builder.WriteByte('\n')
	}
	return builder.String(), true
}

// FileName returns the export file name for the given instant, using its
// UTC calendar date.
func FileName(now time.Time) string {
	return fileNamePrefix + now.UTC().Format("2006-01-02") + ".csv"
}

// Write renders sessions into w.
func Write(w io.Writer, sessions []model.Session, loc *time.Location) (bool, error) {
	content, ok := CSV(sessions, loc)
	if !ok {
		return false, nil
	}
	if _, err := io.WriteString(w, content); err != nil {
		return false, fmt.Errorf("write csv: %w", err)
	}
	return true, nil
}

// WriteFile saves the export into dir and returns its path. An empty path
// is returned when there are no sessions.
func WriteFile(dir string, sessions []model.Session, now time.Time, loc *time.Location) (string, error) {
	content, ok := CSV(sessions, loc)
	if !ok {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(now))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	return path, nil
}
