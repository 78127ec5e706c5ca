package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"obscount/internal/core/model"
	"obscount/internal/core/recorder"
	"obscount/internal/core/timekeeper"
	"obscount/internal/storage"
)

type harness struct {
	now        time.Time
	store      *storage.MemoryStore
	keys       storage.Keys
	scheduler  *timekeeper.ManualScheduler
	controller *Controller
	warnings   []Warning
}

func newHarness(t *testing.T, store *storage.MemoryStore) *harness {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStore()
	}
	h := &harness{
		now:       time.Date(2026, 7, 4, 8, 0, 0, 0, time.UTC),
		store:     store,
		keys:      storage.KeysWithPrefix(storage.DefaultKeyPrefix),
		scheduler: timekeeper.NewManualScheduler(),
	}
	ids := 0
	h.controller = New(Options{
		Repository: storage.NewRepository(store, h.keys),
		Settings:   model.TimerSettings{RecordTime: 5, RestTime: 3},
		Timer:      timekeeper.Config{TickInterval: time.Second, Scheduler: h.scheduler},
		Now:        func() time.Time { return h.now },
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
		Location: time.UTC,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	h.controller.OnWarning(func(warning Warning) {
		h.warnings = append(h.warnings, warning)
	})
	t.Cleanup(h.controller.Close)
	return h
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.now = h.now.Add(time.Second)
		h.scheduler.Fire(1, h.now)
	}
}

func TestCountersMutableOnlyWhileRecording(t *testing.T) {
	h := newHarness(t, nil)
	h.controller.Load()
	counter, _ := h.controller.AddCounter("Robin")

	if h.controller.Increment(counter.ID) {
		t.Fatalf("Increment while idle succeeded")
	}

	h.controller.StartTimer()
	if !h.controller.Increment(counter.ID) || !h.controller.Increment(counter.ID) {
		t.Fatalf("Increment while recording failed")
	}
	if !h.controller.Decrement(counter.ID) {
		t.Fatalf("Decrement while recording failed")
	}

	h.tick(5)
	if state := h.controller.State(); state.Timer.State != timekeeper.StateResting {
		t.Fatalf("state = %s want resting", state.Timer.State)
	}
	if h.controller.Increment(counter.ID) {
		t.Fatalf("Increment while resting succeeded")
	}

	state := h.controller.State()
	if state.Counters[0].Count != 1 {
		t.Fatalf("count = %d want 1", state.Counters[0].Count)
	}
}

func TestRemoveCounterBlockedWhileRecording(t *testing.T) {
	h := newHarness(t, nil)
	h.controller.Load()
	counter, _ := h.controller.AddCounter("Robin")

	h.controller.StartTimer()
	if h.controller.RemoveCounter(counter.ID) {
		t.Fatalf("RemoveCounter while recording succeeded")
	}
	h.tick(5)
	if !h.controller.RemoveCounter(counter.ID) {
		t.Fatalf("RemoveCounter while resting failed")
	}
	if len(h.controller.State().Counters) != 0 {
		t.Fatalf("counter not removed")
	}
}

func TestSaveSessionFlow(t *testing.T) {
	h := newHarness(t, nil)
	h.controller.Load()
	a, _ := h.controller.AddCounter("A")
	h.controller.AddCounter("B")

	if _, err := h.controller.SaveSession(); !errors.Is(err, recorder.ErrNothingToSave) {
		t.Fatalf("SaveSession with zero counts err = %v want ErrNothingToSave", err)
	}

	h.controller.StartTimer()
	startedAt := h.now
	for i := 0; i < 3; i++ {
		h.controller.Increment(a.ID)
	}
	h.tick(7)
	h.controller.StopTimer()

	session, err := h.controller.SaveSession()
	if err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if session.Duration != int(h.now.Sub(startedAt).Seconds()) {
		t.Fatalf("duration = %d want %d", session.Duration, int(h.now.Sub(startedAt).Seconds()))
	}
	if count, _ := session.Count("A"); count != 3 {
		t.Fatalf("session A = %d want 3", count)
	}

	state := h.controller.State()
	if len(state.Sessions) != 1 || state.Sessions[0].ID != session.ID {
		t.Fatalf("sessions = %+v", state.Sessions)
	}
	for _, counter := range state.Counters {
		if counter.Count != 0 {
			t.Fatalf("counter %s = %d after save want 0", counter.Name, counter.Count)
		}
	}
	if !state.SessionStart.IsZero() {
		t.Fatalf("session start not cleared")
	}

	repo := storage.NewRepository(h.store, h.keys)
	stored, err := repo.LoadSessions()
	if err != nil || len(stored) != 1 {
		t.Fatalf("stored sessions = %+v, %v", stored, err)
	}
	counters, err := repo.LoadCounters()
	if err != nil || len(counters) != 2 || counters[0].Count != 0 {
		t.Fatalf("stored counters = %+v, %v", counters, err)
	}
}

func TestSessionStartCapturedOnFirstRecording(t *testing.T) {
	h := newHarness(t, nil)
	h.controller.Load()
	a, _ := h.controller.AddCounter("A")

	h.controller.StartTimer()
	first := h.controller.State().SessionStart
	if !first.Equal(h.now) {
		t.Fatalf("session start = %s want %s", first, h.now)
	}

	h.controller.Increment(a.ID)
	h.tick(8)
	if got := h.controller.State().SessionStart; !got.Equal(first) {
		t.Fatalf("session start moved on second recording phase: %s", got)
	}

	h.controller.StopTimer()
	h.controller.StartTimer()
	if got := h.controller.State().SessionStart; !got.Equal(first) {
		t.Fatalf("session start moved on restart: %s", got)
	}
}

func TestSettingsEditableOnlyWhileIdle(t *testing.T) {
	h := newHarness(t, nil)
	h.controller.Load()

	if !h.controller.SetRecordTime("abc") {
		t.Fatalf("SetRecordTime while idle failed")
	}
	if !h.controller.SetRestTime("42") {
		t.Fatalf("SetRestTime while idle failed")
	}
	settings := h.controller.State().Settings
	if settings.RecordTime != 1 || settings.RestTime != 42 {
		t.Fatalf("settings = %+v want {1 42}", settings)
	}

	h.controller.StartTimer()
	if h.controller.SetRecordTime("30") {
		t.Fatalf("SetRecordTime while recording succeeded")
	}

	stored, err := storage.NewRepository(h.store, h.keys).LoadSettings()
	if err != nil || stored != settings {
		t.Fatalf("stored settings = %+v, %v want %+v", stored, err, settings)
	}
}

func TestLoadRestoresRecords(t *testing.T) {
	store := storage.NewMemoryStore()
	repo := storage.NewRepository(store, storage.KeysWithPrefix(storage.DefaultKeyPrefix))
	if err := repo.SaveCounters([]model.Counter{{ID: "c1", Name: "Finch", Count: 2}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveSettings(model.TimerSettings{RecordTime: 20, RestTime: 10}); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveSessions([]model.Session{{ID: "s1", Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), Counters: []model.Counter{{ID: "c1", Name: "Finch", Count: 9}}, Duration: 12}}); err != nil {
		t.Fatal(err)
	}

	h := newHarness(t, store)
	h.controller.Load()
	state := h.controller.State()
	if !state.Loaded {
		t.Fatalf("state not marked loaded")
	}
	if len(state.Counters) != 1 || state.Counters[0].Name != "Finch" || state.Counters[0].Count != 2 {
		t.Fatalf("counters = %+v", state.Counters)
	}
	if state.Settings != (model.TimerSettings{RecordTime: 20, RestTime: 10}) {
		t.Fatalf("settings = %+v", state.Settings)
	}
	if len(state.Sessions) != 1 || state.Sessions[0].ID != "s1" {
		t.Fatalf("sessions = %+v", state.Sessions)
	}
	if len(h.warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", h.warnings)
	}
}

func TestLoadWithCorruptKey(t *testing.T) {
	store := storage.NewMemoryStore()
	keys := storage.KeysWithPrefix(storage.DefaultKeyPrefix)
	repo := storage.NewRepository(store, keys)
	if err := repo.SaveCounters([]model.Counter{{ID: "c1", Name: "Finch"}}); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveSettings(model.TimerSettings{RecordTime: 20, RestTime: 10}); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(keys.Sessions, "not json"); err != nil {
		t.Fatal(err)
	}

	h := newHarness(t, store)
	h.controller.Load()
	state := h.controller.State()

	if len(state.Sessions) != 0 {
		t.Fatalf("sessions = %+v want default empty", state.Sessions)
	}
	if len(state.Counters) != 1 || state.Settings.RecordTime != 20 {
		t.Fatalf("other keys not loaded: %+v %+v", state.Counters, state.Settings)
	}
	if len(h.warnings) != 1 || h.warnings[0].Kind != WarningLoad || !errors.Is(h.warnings[0].Err, storage.ErrCorrupt) {
		t.Fatalf("warnings = %+v want one corrupt load warning", h.warnings)
	}
	if state.Warning == nil || state.Warning.Kind != WarningLoad {
		t.Fatalf("state warning = %+v", state.Warning)
	}
}

func TestNoWritesBeforeLoad(t *testing.T) {
	store := storage.NewMemoryStore()
	keys := storage.KeysWithPrefix(storage.DefaultKeyPrefix)
	if err := store.Set(keys.Counters, `[{"id":"c1","name":"Kept","count":4}]`); err != nil {
		t.Fatal(err)
	}

	h := newHarness(t, store)
	writesBefore := store.Writes()
	h.controller.AddCounter("Early")
	h.controller.SetRecordTime("9")
	if store.Writes() != writesBefore {
		t.Fatalf("records written before Load: %d writes", store.Writes()-writesBefore)
	}

	h.controller.Load()
	counters := h.controller.State().Counters
	if len(counters) != 1 || counters[0].Name != "Kept" {
		t.Fatalf("counters after load = %+v want stored record", counters)
	}
}

func TestStorageUnavailable(t *testing.T) {
	store := storage.NewMemoryStore()
	store.FailWrites(errors.New("private browsing"))

	h := newHarness(t, store)
	h.controller.Load()
	if len(h.warnings) != 1 || h.warnings[0].Kind != WarningUnavailable {
		t.Fatalf("warnings = %+v want unavailable", h.warnings)
	}

	counter, ok := h.controller.AddCounter("Wren")
	if !ok {
		t.Fatalf("AddCounter failed in memory-only mode")
	}
	h.controller.StartTimer()
	h.controller.Increment(counter.ID)
	if _, err := h.controller.SaveSession(); err != nil {
		t.Fatalf("SaveSession in memory-only mode: %v", err)
	}
	if len(h.controller.State().Sessions) != 1 {
		t.Fatalf("session not kept in memory")
	}
	if len(h.warnings) != 1 {
		t.Fatalf("writes in memory-only mode raised warnings: %+v", h.warnings)
	}
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	h := newHarness(t, nil)
	h.controller.Load()
	h.store.FailWrites(errors.New("quota exceeded"))

	counter, ok := h.controller.AddCounter("Jay")
	if !ok {
		t.Fatalf("AddCounter failed")
	}
	if len(h.warnings) != 1 || h.warnings[0].Kind != WarningSave {
		t.Fatalf("warnings = %+v want one save warning", h.warnings)
	}
	if state := h.controller.State(); len(state.Counters) != 1 || state.Counters[0].ID != counter.ID {
		t.Fatalf("counter rolled back: %+v", state.Counters)
	}

	h.controller.DismissWarning()
	if h.controller.State().Warning != nil {
		t.Fatalf("warning not dismissed")
	}
}

func TestExportCSV(t *testing.T) {
	h := newHarness(t, nil)
	h.controller.Load()

	var empty bytes.Buffer
	if ok, err := h.controller.ExportCSV(&empty); ok || err != nil {
		t.Fatalf("ExportCSV with no sessions = %v, %v", ok, err)
	}

	x, _ := h.controller.AddCounter("X")
	h.controller.StartTimer()
	h.controller.Increment(x.ID)
	h.controller.Increment(x.ID)
	if _, err := h.controller.SaveSession(); err != nil {
		t.Fatal(err)
	}

	var buffer bytes.Buffer
	if ok, err := h.controller.ExportCSV(&buffer); !ok || err != nil {
		t.Fatalf("ExportCSV = %v, %v", ok, err)
	}
	if !strings.HasPrefix(buffer.String(), "Date,Duration (seconds),X\n") {
		t.Fatalf("csv = %q", buffer.String())
	}

	dir := t.TempDir()
	path, err := h.controller.ExportCSVFile(dir)
	if err != nil {
		t.Fatalf("ExportCSVFile: %v", err)
	}
	if path != filepath.Join(dir, h.controller.ExportFileName()) {
		t.Fatalf("path = %q", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export file missing: %v", err)
	}
}

func TestOnChangeNotifiesOnTransitions(t *testing.T) {
	h := newHarness(t, nil)
	h.controller.Load()
	changes := 0
	h.controller.OnChange(func() { changes++ })

	h.controller.StartTimer()
	h.tick(5)
	h.controller.StopTimer()
	if changes != 3 {
		t.Fatalf("changes = %d want 3", changes)
	}
}

func TestAddCounterTrimsName(t *testing.T) {
	h := newHarness(t, nil)
	h.controller.Load()

	if _, ok := h.controller.AddCounter("   "); ok {
		t.Fatalf("blank name accepted")
	}
	counter, ok := h.controller.AddCounter(" Bird ")
	if !ok || counter.Name != "Bird" {
		t.Fatalf("AddCounter = %+v, %v want trimmed Bird", counter, ok)
	}
}

func TestIncrementHoldsPhaseUntilApplied(t *testing.T) {
	h := newHarness(t, nil)
	h.controller.Load()
	counter, _ := h.controller.AddCounter("Robin")
	h.controller.StartTimer()
	h.tick(4)

	tickDone := make(chan struct{})
	tickedDuringMutation := false
	applied := h.controller.mutateWhileRecording(func() bool {
		go func() {
			h.scheduler.Fire(1, h.now.Add(time.Second))
			close(tickDone)
		}()
		select {
		case <-tickDone:
			tickedDuringMutation = true
		case <-time.After(50 * time.Millisecond):
		}
		return h.controller.registry.Increment(counter.ID)
	})

	select {
	case <-tickDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("last recording tick never completed")
	}
	if tickedDuringMutation {
		t.Fatalf("timer left recording while an increment was being applied")
	}
	if !applied {
		t.Fatalf("increment refused while recording")
	}

	state := h.controller.State()
	if state.Timer.State != timekeeper.StateResting {
		t.Fatalf("state = %s want resting", state.Timer.State)
	}
	if state.Counters[0].Count != 1 {
		t.Fatalf("count = %d want 1", state.Counters[0].Count)
	}
	if h.controller.Increment(counter.ID) {
		t.Fatalf("increment applied while resting")
	}
}

func TestRemoveCounterRefusedOnceRecordingStarts(t *testing.T) {
	h := newHarness(t, nil)
	h.controller.Load()
	counter, _ := h.controller.AddCounter("Wren")
	h.controller.StartTimer()

	if h.controller.RemoveCounter(counter.ID) {
		t.Fatalf("counter removed while recording")
	}
	h.tick(5)
	if !h.controller.RemoveCounter(counter.ID) {
		t.Fatalf("counter not removed while resting")
	}
}
