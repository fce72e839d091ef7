package engine

type TriggerKind int

const (
	TriggerNone TriggerKind = iota
	TriggerFile
	TriggerCommand
)

// Trigger is the result of scanning the draft for a picker trigger. Start is
// the rune offset of the trigger character; Query is everything between the
// trigger and the caret.
type Trigger struct {
	Kind  TriggerKind
	Query string
	Start int
}

// DetectTrigger scans backward from the caret for the nearest live trigger.
// A '@' opens the file picker as long as no whitespace sits between it and
// the caret. A '/' opens the command picker under the same rule, but only
// when it starts the text or follows whitespace, so paths like "a/b" never
// trigger it. The function is pure; picker state is recomputed from scratch
// on every text change.
func DetectTrigger(text string, caret int) Trigger {
	runes := []rune(text)
	if caret < 0 {
		caret = 0
	}
	if caret > len(runes) {
		caret = len(runes)
	}
	for i := caret - 1; i >= 0; i-- {
		c := runes[i]
		if isTriggerBoundary(c) {
			break
		}
		switch c {
		case '@':
			return Trigger{Kind: TriggerFile, Query: string(runes[i+1 : caret]), Start: i}
		case '/':
			if i == 0 || isTriggerBoundary(runes[i-1]) {
				return Trigger{Kind: TriggerCommand, Query: string(runes[i+1 : caret]), Start: i}
			}
			// A slash inside a word is path-like; keep scanning for an '@'.
		}
	}
	return Trigger{Kind: TriggerNone, Start: -1}
}

func isTriggerBoundary(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// eraseTrigger removes the trigger substring [start, caret) from text and
// returns the new text plus the caret position, which lands where the
// trigger began.
func eraseTrigger(text string, start, caret int) (string, int) {
	runes := []rune(text)
	if start < 0 || start > len(runes) {
		return text, caret
	}
	if caret < start {
		caret = start
	}
	if caret > len(runes) {
		caret = len(runes)
	}
	out := make([]rune, 0, len(runes)-(caret-start))
	out = append(out, runes[:start]...)
	out = append(out, runes[caret:]...)
	return string(out), start
}
