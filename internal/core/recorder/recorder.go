package recorder

import (
	"errors"
	"math"
	"time"

	"obscount/internal/core/model"
	"obscount/internal/core/registry"
)

// ErrNothingToSave is returned when no counter has been incremented.
var ErrNothingToSave = errors.New("no observations to save")

// NothingToSaveNotice is the message shown to the user for ErrNothingToSave.
const NothingToSaveNotice = "No observations to save! Please record at least one count."

// Config contains runtime options for Recorder.
type Config struct {
	Now   func() time.Time
	NewID registry.IDFunc
}

// Recorder turns registry snapshots into sessions. Sessions are kept newest
// first and are never edited once created.
type Recorder struct {
	options   Config
	sessions  []model.Session
	startedAt time.Time
}

// New creates a recorder with no sessions.
func New(options Config) *Recorder {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.NewID == nil {
		options.NewID = registry.NewID
	}
	return &Recorder{options: options}
}

// MarkStart captures the session start unless one is already captured.
func (recorder *Recorder) MarkStart(at time.Time) bool {
	if !recorder.startedAt.IsZero() {
		return false
	}
	recorder.startedAt = at
	return true
}

// StartedAt returns the captured session start.
func (recorder *Recorder) StartedAt() (time.Time, bool) {
	return recorder.startedAt, !recorder.startedAt.IsZero()
}

// Save snapshots the registry into a new session, prepends it and resets
// the registry counts. Nothing changes when ErrNothingToSave is returned.
func (recorder *Recorder) Save(counters *registry.Registry) (model.Session, error) {
	if counters.Len() == 0 || !counters.HasObservations() {
		return model.Session{}, ErrNothingToSave
	}

	now := recorder.options.Now()
	duration := 0
	if !recorder.startedAt.IsZero() {
		duration = int(math.Round(now.Sub(recorder.startedAt).Seconds()))
		if duration < 0 {
			duration = 0
		}
	}

	session := model.Session{
		ID:        recorder.options.NewID(),
		Timestamp: now,
		Counters:  counters.Counters(),
		Duration:  duration,
	}

	sessions := make([]model.Session, 0, len(recorder.sessions)+1)
	sessions = append(sessions, session)
	recorder.sessions = append(sessions, recorder.sessions...)

	counters.ResetCounts()
	recorder.startedAt = time.Time{}
	return session.Clone(), nil
}

// Sessions returns a deep copy of the session list, newest first.
func (recorder *Recorder) Sessions() []model.Session {
	return model.CloneSessions(recorder.sessions)
}

// Len returns the number of sessions.
func (recorder *Recorder) Len() int {
	return len(recorder.sessions)
}

// Replace swaps the session list, e.g. after loading from storage.
func (recorder *Recorder) Replace(sessions []model.Session) {
	recorder.sessions = model.CloneSessions(sessions)
}
