package tui

import (
	"path/filepath"
	"testing"
)

func TestPromptHistory_RecallOrder(t *testing.T) {
	h := loadPromptHistory(filepath.Join(t.TempDir(), "history.json"))
	h.Add("first")
	h.Add("second")

	if text, ok := h.Prev(); !ok || text != "second" {
		t.Fatalf("Prev = %q, %v", text, ok)
	}
	if text, ok := h.Prev(); !ok || text != "first" {
		t.Fatalf("Prev = %q, %v", text, ok)
	}
	if _, ok := h.Prev(); ok {
		t.Fatal("Prev past the oldest entry")
	}

	if text, ok := h.Next(); !ok || text != "second" {
		t.Fatalf("Next = %q, %v", text, ok)
	}
	if _, ok := h.Next(); ok {
		t.Fatal("Next past the newest entry should report false")
	}
	if h.Browsing() {
		t.Fatal("still browsing after walking off the end")
	}
}

func TestPromptHistory_PersistsAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	h := loadPromptHistory(path)
	h.Add("remember me")

	h2 := loadPromptHistory(path)
	if text, ok := h2.Prev(); !ok || text != "remember me" {
		t.Fatalf("reloaded Prev = %q, %v", text, ok)
	}
}

func TestPromptHistory_SkipsBlankAndConsecutiveDuplicates(t *testing.T) {
	h := loadPromptHistory(filepath.Join(t.TempDir(), "history.json"))
	h.Add("  ")
	h.Add("same")
	h.Add("same")
	if len(h.entries) != 1 {
		t.Fatalf("entries = %v", h.entries)
	}
}

func TestPromptHistory_AddResetsBrowsing(t *testing.T) {
	h := loadPromptHistory(filepath.Join(t.TempDir(), "history.json"))
	h.Add("a")
	h.Add("b")
	h.Prev()
	h.Add("c")
	if h.Browsing() {
		t.Fatal("Add should reset the browse position")
	}
	if text, _ := h.Prev(); text != "c" {
		t.Fatalf("newest entry = %q, want c", text)
	}
}
