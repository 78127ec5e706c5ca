package tray

import (
	"testing"

	"obscount/internal/core/timekeeper"
)

func TestManagerMenuFollowsState(t *testing.T) {
	toggled := 0
	manager := New(nil, Callbacks{
		OnToggleTimer: func() { toggled++ },
	})

	if manager.toggleItem.Label != "Start Timer" {
		t.Fatalf("toggle label = %q want Start Timer", manager.toggleItem.Label)
	}
	if !manager.exportItem.Disabled {
		t.Fatalf("export enabled without sessions")
	}

	manager.SetState(timekeeper.StateRecording)
	manager.SetStatus("Recording 0:42")
	if manager.toggleItem.Label != "Stop Timer" {
		t.Fatalf("toggle label = %q want Stop Timer", manager.toggleItem.Label)
	}
	if manager.statusItem.Label != "Status: Recording 0:42" {
		t.Fatalf("status label = %q", manager.statusItem.Label)
	}

	manager.SetCanExport(true)
	if manager.exportItem.Disabled {
		t.Fatalf("export still disabled")
	}

	manager.toggleItem.Action()
	if toggled != 1 {
		t.Fatalf("toggle callback called %d times want 1", toggled)
	}

	menu := manager.Menu()
	for _, item := range menu.Items {
		if item.Label == "Quit" {
			item.Action()
		}
	}
}
