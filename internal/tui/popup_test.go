package tui

import (
	"strings"
	"testing"

	"sidekick/internal/engine"
)

func TestRenderPicker_ClosedRendersNothing(t *testing.T) {
	var p engine.Picker
	p.Close()
	if got := renderPicker(NewTheme(), p, 60); got != "" {
		t.Fatalf("closed picker rendered %q", got)
	}
}

func TestRenderPicker_MarksSelectedRow(t *testing.T) {
	var p engine.Picker
	p.Open(engine.PickerFile, "ut", 0)
	p.SetCandidates([]engine.Candidate{
		{Label: "utils.ts", Description: "src/utils.ts", File: engine.FileRef{Path: "src/utils.ts", Name: "utils.ts"}},
		{Label: "auth.ts", Description: "src/auth.ts", File: engine.FileRef{Path: "src/auth.ts", Name: "auth.ts"}},
	})
	p.Move(1)

	out := renderPicker(NewTheme(), p, 60)
	for _, want := range []string{"files", "utils.ts", "auth.ts", "›"} {
		if !strings.Contains(out, want) {
			t.Fatalf("popup missing %q:\n%s", want, out)
		}
	}
	// The marker must sit on the selected row.
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "›") && !strings.Contains(line, "auth.ts") {
			t.Fatalf("marker on wrong row: %q", line)
		}
	}
}

func TestRenderPicker_EmptyShowsSearching(t *testing.T) {
	var p engine.Picker
	p.Open(engine.PickerFile, "zz", 0)
	out := renderPicker(NewTheme(), p, 60)
	if !strings.Contains(out, "searching") {
		t.Fatalf("expected placeholder, got:\n%s", out)
	}
}

func TestRenderPicker_CommandWithNoRowsShowsNoMatches(t *testing.T) {
	var p engine.Picker
	p.Open(engine.PickerCommand, "zzz", 0)
	p.SetCandidates(nil)
	out := renderPicker(NewTheme(), p, 60)
	if !strings.Contains(out, "no matches") {
		t.Fatalf("expected empty state, got:\n%s", out)
	}
}
