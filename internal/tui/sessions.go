package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/muesli/reflow/truncate"

	"sidekick/internal/engine"
)

// sessionRow is one rendered line of the session overlay: either a group
// header or a selectable session.
type sessionRow struct {
	header bool
	label  string
	meta   engine.SessionMeta
}

type sessionOverlay struct {
	search   textinput.Model
	rename   textinput.Model
	renaming bool
	rows     []sessionRow
	sel      int
}

func newSessionOverlay() *sessionOverlay {
	search := textinput.New()
	search.Placeholder = "Search sessions"
	search.Prompt = "/ "
	search.CharLimit = 120
	search.Focus()

	rename := textinput.New()
	rename.Prompt = "rename: "
	rename.CharLimit = 120

	return &sessionOverlay{search: search, rename: rename}
}

// refresh rebuilds the rows from the grouped directory listing, keeping the
// selection on a session row.
func (o *sessionOverlay) refresh(groups []engine.SessionGroup) {
	o.rows = flattenGroups(groups)
	if o.sel >= len(o.rows) {
		o.sel = len(o.rows) - 1
	}
	if o.sel < 0 {
		o.sel = 0
	}
	o.snapToSession(1)
}

func flattenGroups(groups []engine.SessionGroup) []sessionRow {
	var rows []sessionRow
	for _, g := range groups {
		rows = append(rows, sessionRow{header: true, label: g.Label})
		for _, s := range g.Sessions {
			rows = append(rows, sessionRow{label: engine.DisplayTitle(s), meta: s})
		}
	}
	return rows
}

// move steps the selection over session rows, skipping headers. It does not
// wrap; the list can be long and wrap-around is disorienting here.
func (o *sessionOverlay) move(delta int) {
	if len(o.rows) == 0 {
		return
	}
	i := o.sel
	for {
		i += delta
		if i < 0 || i >= len(o.rows) {
			return
		}
		if !o.rows[i].header {
			o.sel = i
			return
		}
	}
}

// snapToSession nudges the selection off a header row in the given direction,
// falling back to the other direction at the edges.
func (o *sessionOverlay) snapToSession(dir int) {
	if o.sel < len(o.rows) && o.sel >= 0 && !o.rows[o.sel].header {
		return
	}
	before := o.sel
	o.move(dir)
	if o.sel == before || (o.sel < len(o.rows) && o.rows[o.sel].header) {
		o.move(-dir)
	}
}

func (o *sessionOverlay) selected() (engine.SessionMeta, bool) {
	if o.sel < 0 || o.sel >= len(o.rows) || o.rows[o.sel].header {
		return engine.SessionMeta{}, false
	}
	return o.rows[o.sel].meta, true
}

func (o *sessionOverlay) startRename() {
	meta, ok := o.selected()
	if !ok {
		return
	}
	o.renaming = true
	o.rename.SetValue(meta.Title)
	o.rename.CursorEnd()
	o.rename.Focus()
	o.search.Blur()
}

func (o *sessionOverlay) stopRename() {
	o.renaming = false
	o.rename.Blur()
	o.search.Focus()
}

func (o *sessionOverlay) view(t Theme, width, height int) string {
	var b strings.Builder
	b.WriteString(t.TopBarTitle.Render("Sessions"))
	b.WriteString("\n")
	b.WriteString(t.PopupHint.Render("↑/↓ select • enter open • ctrl+n new • ctrl+r rename • ctrl+x delete • esc close"))
	b.WriteString("\n")
	b.WriteString(o.search.View())
	b.WriteString("\n\n")

	listH := height - 6
	if listH < 3 {
		listH = 3
	}
	start := 0
	if o.sel >= listH {
		start = o.sel - listH + 1
	}
	end := start + listH
	if end > len(o.rows) {
		end = len(o.rows)
	}

	if len(o.rows) == 0 {
		b.WriteString(t.RowMuted.Render("No sessions match."))
	}
	for i := start; i < end; i++ {
		row := o.rows[i]
		if row.header {
			b.WriteString(t.GroupLabel.Render(row.label))
			b.WriteString("\n")
			continue
		}
		prefix := "  "
		style := t.RowMuted
		if i == o.sel {
			prefix = "› "
			style = t.RowSel
		}
		label := truncate.StringWithTail(row.label, uint(max(12, width-22)), "…")
		line := prefix + style.Render(label)
		line += " " + t.PopupHint.Render(relativeAge(row.meta.UpdatedAt))
		b.WriteString(line)
		b.WriteString("\n")
	}

	if o.renaming {
		b.WriteString("\n")
		b.WriteString(o.rename.View())
	}

	return t.Pane.Width(width - 2).Height(height - 2).Render(b.String())
}

func relativeAge(at time.Time) string {
	if at.IsZero() {
		return ""
	}
	d := time.Since(at)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return at.Format("Jan 2")
	}
}
