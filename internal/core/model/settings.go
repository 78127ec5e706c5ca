package model

import (
	"strconv"
	"strings"
	"time"
)

// MinPhaseSeconds is the shortest allowed recording or resting phase.
const MinPhaseSeconds = 1

// TimerSettings defines the length of the recording and resting phases.
type TimerSettings struct {
	RecordTime int `json:"recordTime"`
	RestTime   int `json:"restTime"`
}

// DefaultTimerSettings returns the settings used before anything is stored.
func DefaultTimerSettings() TimerSettings {
	return TimerSettings{
		RecordTime: 60,
		RestTime:   120,
	}
}

// Clamp raises both phases to at least MinPhaseSeconds.
func (settings TimerSettings) Clamp() TimerSettings {
	settings.RecordTime = clampSeconds(settings.RecordTime)
	settings.RestTime = clampSeconds(settings.RestTime)
	return settings
}

// RecordDuration returns the recording phase length.
func (settings TimerSettings) RecordDuration() time.Duration {
	return time.Duration(settings.RecordTime) * time.Second
}

// RestDuration returns the resting phase length.
func (settings TimerSettings) RestDuration() time.Duration {
	return time.Duration(settings.RestTime) * time.Second
}

// ParseSeconds converts user input into a phase length. The leading run of
// digits is used, anything unparsable counts as zero, and the result is
// clamped to MinPhaseSeconds.
func ParseSeconds(value string) int {
	value = strings.TrimSpace(value)
	end := 0
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		end++
	}
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	parsed, err := strconv.Atoi(value[:end])
	if err != nil {
		parsed = 0
	}
	return clampSeconds(parsed)
}

func clampSeconds(seconds int) int {
	if seconds < MinPhaseSeconds {
		return MinPhaseSeconds
	}
	return seconds
}
