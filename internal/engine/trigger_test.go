package engine

import "testing"

func TestDetectTrigger_FileMention(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		caret int
		kind  TriggerKind
		query string
		start int
	}{
		{"bare at", "@", 1, TriggerFile, "", 0},
		{"with query", "look at @ut", 11, TriggerFile, "ut", 8},
		{"query may contain slash", "@src/ut", 7, TriggerFile, "src/ut", 0},
		{"space kills it", "@ut ", 4, TriggerNone, "", -1},
		{"newline kills it", "@ut\nx", 5, TriggerNone, "", -1},
		{"caret before at", "x @ut", 1, TriggerNone, "", -1},
		{"caret mid-query", "@util", 3, TriggerFile, "ut", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectTrigger(tc.text, tc.caret)
			if got.Kind != tc.kind || got.Query != tc.query || got.Start != tc.start {
				t.Fatalf("DetectTrigger(%q, %d) = %+v, want kind=%d query=%q start=%d",
					tc.text, tc.caret, got, tc.kind, tc.query, tc.start)
			}
		})
	}
}

func TestDetectTrigger_Command(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		caret int
		kind  TriggerKind
		query string
	}{
		{"start of text", "/fi", 3, TriggerCommand, "fi"},
		{"after space", "please /fix", 11, TriggerCommand, "fix"},
		{"mid-word slash is a path", "src/fix", 7, TriggerNone, ""},
		{"space after closes", "/fix it", 7, TriggerNone, ""},
		{"empty query", "/", 1, TriggerCommand, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectTrigger(tc.text, tc.caret)
			if got.Kind != tc.kind || got.Query != tc.query {
				t.Fatalf("DetectTrigger(%q, %d) = %+v, want kind=%d query=%q",
					tc.text, tc.caret, got, tc.kind, tc.query)
			}
		})
	}
}

func TestDetectTrigger_FilePrecedence(t *testing.T) {
	// "@/x": scanning back from the caret hits the '/' first but it is not
	// preceded by whitespace, so the '@' wins and the slash is query text.
	got := DetectTrigger("@/x", 3)
	if got.Kind != TriggerFile || got.Query != "/x" {
		t.Fatalf("got %+v, want file trigger with query %q", got, "/x")
	}
}

func TestDetectTrigger_CaretClamped(t *testing.T) {
	if got := DetectTrigger("@a", 99); got.Kind != TriggerFile || got.Query != "a" {
		t.Fatalf("caret past end should clamp, got %+v", got)
	}
	if got := DetectTrigger("@a", -1); got.Kind != TriggerNone {
		t.Fatalf("negative caret should clamp to start, got %+v", got)
	}
}

func TestEraseTrigger(t *testing.T) {
	text, caret := eraseTrigger("look at @ut here", 8, 11)
	if text != "look at  here" || caret != 8 {
		t.Fatalf("got %q caret %d", text, caret)
	}
	// Out-of-range start leaves everything alone.
	text, caret = eraseTrigger("abc", 9, 2)
	if text != "abc" || caret != 2 {
		t.Fatalf("got %q caret %d", text, caret)
	}
}
