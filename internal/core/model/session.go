package model

import "time"

// Session is an immutable snapshot of the counters taken when the user saves.
type Session struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Counters  []Counter `json:"counters"`
	// Duration is the number of seconds since recording started.
	Duration int `json:"duration"`
}

// Clone returns a deep copy of the session.
func (session Session) Clone() Session {
	session.Counters = CloneCounters(session.Counters)
	return session
}

// Count returns the count of the first counter with the given name.
func (session Session) Count(name string) (int, bool) {
	for _, counter := range session.Counters {
		if counter.Name == name {
			return counter.Count, true
		}
	}
	return 0, false
}

// Total returns the sum of all counts in the session.
func (session Session) Total() int {
	total := 0
	for _, counter := range session.Counters {
		total += counter.Count
	}
	return total
}

// CloneSessions deep copies a session list.
func CloneSessions(sessions []Session) []Session {
	if sessions == nil {
		return nil
	}
	cloned := make([]Session, len(sessions))
	for i, session := range sessions {
		cloned[i] = session.Clone()
	}
	return cloned
}
