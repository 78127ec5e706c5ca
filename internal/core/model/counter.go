package model

// Counter is a named tally of observations.
type Counter struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CloneCounters returns a copy of counters that shares no memory with the input.
func CloneCounters(counters []Counter) []Counter {
	if counters == nil {
		return nil
	}
	cloned := make([]Counter, len(counters))
	copy(cloned, counters)
	return cloned
}
