package tui

import (
	"testing"
	"time"

	"sidekick/internal/engine"
)

func overlayWith(groups []engine.SessionGroup) *sessionOverlay {
	o := newSessionOverlay()
	o.refresh(groups)
	return o
}

func sampleGroups() []engine.SessionGroup {
	now := time.Now()
	return []engine.SessionGroup{
		{Label: engine.GroupCurrent, Sessions: []engine.SessionMeta{
			{ID: "a", Title: "Active work", UpdatedAt: now},
		}},
		{Label: engine.GroupRecent, Sessions: []engine.SessionMeta{
			{ID: "b", Title: "Yesterday", UpdatedAt: now.Add(-2 * time.Hour)},
			{ID: "c", UpdatedAt: now.Add(-3 * time.Hour)},
		}},
	}
}

func TestFlattenGroups_InterleavesHeaders(t *testing.T) {
	rows := flattenGroups(sampleGroups())
	wantHeaders := map[int]string{0: engine.GroupCurrent, 2: engine.GroupRecent}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	for i, label := range wantHeaders {
		if !rows[i].header || rows[i].label != label {
			t.Fatalf("row %d = %+v, want header %q", i, rows[i], label)
		}
	}
	// Untitled sessions show the placeholder label.
	if rows[4].label != "Untitled chat" {
		t.Fatalf("untitled row label = %q", rows[4].label)
	}
}

func TestOverlayMove_SkipsHeaders(t *testing.T) {
	o := overlayWith(sampleGroups())
	if _, ok := o.selected(); !ok {
		t.Fatal("no initial selection")
	}

	o.move(1)
	meta, _ := o.selected()
	if meta.ID != "b" {
		t.Fatalf("after one step selection = %q, want b", meta.ID)
	}

	o.move(1)
	meta, _ = o.selected()
	if meta.ID != "c" {
		t.Fatalf("after two steps selection = %q, want c", meta.ID)
	}

	// No wrap at either edge.
	o.move(1)
	if meta, _ = o.selected(); meta.ID != "c" {
		t.Fatalf("moved past the end to %q", meta.ID)
	}
	o.move(-1)
	o.move(-1)
	o.move(-1)
	if meta, _ = o.selected(); meta.ID != "a" {
		t.Fatalf("moved past the start to %q", meta.ID)
	}
}

func TestOverlayRefresh_ClampsSelection(t *testing.T) {
	o := overlayWith(sampleGroups())
	o.move(1)
	o.move(1)

	o.refresh([]engine.SessionGroup{{Label: engine.GroupCurrent, Sessions: []engine.SessionMeta{{ID: "a", Title: "Only"}}}})
	meta, ok := o.selected()
	if !ok || meta.ID != "a" {
		t.Fatalf("selection after shrink = %+v, %v", meta, ok)
	}
}
