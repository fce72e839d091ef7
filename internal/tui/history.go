package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// historyLimit caps how many prompts are kept on disk.
const historyLimit = 100

// promptHistory is the up/down prompt recall buffer, persisted as a JSON
// array. pos == len(entries) means "not browsing".
type promptHistory struct {
	path    string
	entries []string
	pos     int
}

func loadPromptHistory(path string) *promptHistory {
	h := &promptHistory{path: path}
	data, err := os.ReadFile(path)
	if err == nil {
		// A corrupt file just means an empty history.
		_ = json.Unmarshal(data, &h.entries)
	}
	h.pos = len(h.entries)
	return h
}

// Add records a sent prompt and resets browsing. Consecutive duplicates and
// blank prompts are skipped.
func (h *promptHistory) Add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		h.pos = len(h.entries)
		return
	}
	if n := len(h.entries); n == 0 || h.entries[n-1] != text {
		h.entries = append(h.entries, text)
		if len(h.entries) > historyLimit {
			h.entries = h.entries[len(h.entries)-historyLimit:]
		}
		h.save()
	}
	h.pos = len(h.entries)
}

// Prev steps back through history; ok is false at the oldest entry.
func (h *promptHistory) Prev() (string, bool) {
	if h.pos == 0 || len(h.entries) == 0 {
		return "", false
	}
	h.pos--
	return h.entries[h.pos], true
}

// Next steps forward; past the newest entry it reports false, meaning the
// composer should go back to empty.
func (h *promptHistory) Next() (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return "", false
	}
	return h.entries[h.pos], true
}

func (h *promptHistory) Browsing() bool {
	return h.pos < len(h.entries)
}

func (h *promptHistory) StopBrowsing() {
	h.pos = len(h.entries)
}

func (h *promptHistory) save() {
	if h.path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return
	}
	data, err := json.Marshal(h.entries)
	if err != nil {
		return
	}
	_ = os.WriteFile(h.path, data, 0o644)
}
