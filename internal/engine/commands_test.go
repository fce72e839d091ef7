package engine

import "testing"

func TestFilterCommands(t *testing.T) {
	if got := FilterCommands(""); len(got) != len(CommandCatalog) {
		t.Fatalf("empty query should return the full catalog, got %d", len(got))
	}
	got := FilterCommands("FI")
	if len(got) != 1 || got[0].ID != "fix" {
		t.Fatalf("case-insensitive substring match failed: %+v", got)
	}
	// Substring, not prefix.
	got = FilterCommands("view")
	if len(got) != 1 || got[0].ID != "review" {
		t.Fatalf("substring match failed: %+v", got)
	}
	if got := FilterCommands("nope"); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}
