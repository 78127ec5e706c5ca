package preferences

import (
	"testing"

	"obscount/internal/config"

	"fyne.io/fyne/v2/test"
)

func TestSaveAppliesEditedFields(t *testing.T) {
	fyneApp := test.NewTempApp(t)
	original := config.Default()
	original.Storage.Dir = "/data/before"

	var saved *config.Config
	prefs := New(fyneApp, original, func(cfg config.Config) {
		saved = &cfg
	})

	prefs.backend.SetSelected(config.BackendMemory)
	prefs.dataDir.SetText("  ")
	prefs.exportDir.SetText("/exports")
	prefs.logLevel.SetSelected("debug")
	prefs.restOverlay.SetChecked(false)
	test.Tap(prefs.saveButton)

	if saved == nil {
		t.Fatalf("save callback not called")
	}
	if saved.Storage.Backend != config.BackendMemory {
		t.Fatalf("backend = %q", saved.Storage.Backend)
	}
	if saved.Storage.Dir != "/data/before" {
		t.Fatalf("blank data dir replaced the old one: %q", saved.Storage.Dir)
	}
	if saved.Export.Dir != "/exports" || saved.LogLevel != "debug" || saved.RestOverlay {
		t.Fatalf("unexpected config %+v", *saved)
	}
	if !RequiresRestart(original, *saved) {
		t.Fatalf("backend change should require restart")
	}
}

func TestApplyIgnoresUnknownBackend(t *testing.T) {
	cfg := config.Default()
	next := Settings{Backend: "sqlite", RestOverlay: cfg.RestOverlay}.Apply(cfg)
	if next.Storage.Backend != cfg.Storage.Backend {
		t.Fatalf("backend = %q want %q", next.Storage.Backend, cfg.Storage.Backend)
	}
	if RequiresRestart(cfg, next) {
		t.Fatalf("unchanged storage should not require restart")
	}
}
