package engine

type PickerKind int

const (
	PickerClosed PickerKind = iota
	PickerFile
	PickerCommand
)

// Candidate is one selectable row in an open picker. Exactly one of File or
// Command is meaningful, matching the picker kind.
type Candidate struct {
	Label       string
	Description string
	File        FileRef
	Command     string
}

func (c Candidate) key() string {
	if c.Command != "" {
		return "cmd:" + c.Command
	}
	return "file:" + c.File.Path
}

// Picker owns the open/closed state, the candidate list and the logical
// selection index for the single context picker. At most one picker kind is
// open at a time; rendering subscribes to this state and never feeds back
// into it.
type Picker struct {
	Kind         PickerKind
	Query        string
	TriggerStart int
	Candidates   []Candidate
	Selected     int
}

func (p Picker) IsOpen() bool { return p.Kind != PickerClosed }

// Open switches the picker to the given kind, force-closing whatever was
// open before. The candidate list starts empty until a result set arrives.
func (p *Picker) Open(kind PickerKind, query string, triggerStart int) {
	p.Kind = kind
	p.Query = query
	p.TriggerStart = triggerStart
	p.Candidates = nil
	p.Selected = -1
}

// Close is idempotent.
func (p *Picker) Close() {
	p.Kind = PickerClosed
	p.Query = ""
	p.TriggerStart = -1
	p.Candidates = nil
	p.Selected = -1
}

// SetCandidates replaces the candidate list. Selection resets to the top
// unless the new list is identical to the old one, in which case the user's
// position is kept. Selected is always within [0, len) or -1 when empty.
func (p *Picker) SetCandidates(items []Candidate) {
	if !p.IsOpen() {
		return
	}
	same := len(items) == len(p.Candidates)
	if same {
		for i := range items {
			if items[i].key() != p.Candidates[i].key() {
				same = false
				break
			}
		}
	}
	prev := p.Selected
	p.Candidates = items
	switch {
	case len(items) == 0:
		p.Selected = -1
	case same && prev >= 0 && prev < len(items):
		p.Selected = prev
	default:
		p.Selected = 0
	}
}

// Move steps the selection by delta, wrapping in both directions. No-op on an
// empty list.
func (p *Picker) Move(delta int) {
	n := len(p.Candidates)
	if !p.IsOpen() || n == 0 {
		return
	}
	if p.Selected < 0 || p.Selected >= n {
		p.Selected = 0
	}
	p.Selected = ((p.Selected+delta)%n + n) % n
}

// Current returns the candidate that a commit would take: the selected one,
// or the first row if the selection is somehow out of range.
func (p *Picker) Current() (Candidate, bool) {
	if !p.IsOpen() || len(p.Candidates) == 0 {
		return Candidate{}, false
	}
	i := p.Selected
	if i < 0 || i >= len(p.Candidates) {
		i = 0
	}
	return p.Candidates[i], true
}

// At returns the candidate at a rendered index, for direct click-selection.
func (p *Picker) At(i int) (Candidate, bool) {
	if !p.IsOpen() || i < 0 || i >= len(p.Candidates) {
		return Candidate{}, false
	}
	return p.Candidates[i], true
}
