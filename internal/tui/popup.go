package tui

import (
	"strings"

	"github.com/muesli/reflow/truncate"

	"sidekick/internal/engine"
)

// popupMaxRows bounds the rendered candidate list; the selection can still
// move through the full set.
const popupMaxRows = 8

func renderPicker(t Theme, p engine.Picker, width int) string {
	if !p.IsOpen() {
		return ""
	}

	title := "files"
	hint := "↑/↓ select • tab/enter attach • esc dismiss"
	if p.Kind == engine.PickerCommand {
		title = "commands"
	}

	if width < 24 {
		width = 24
	}
	inner := width - 4

	var b strings.Builder
	b.WriteString(t.PopupTitle.Render(title))
	if p.Query != "" {
		b.WriteString(" ")
		b.WriteString(t.PopupDesc.Render(p.Query))
	}
	b.WriteString("\n")
	b.WriteString(t.PopupHint.Render(hint))
	b.WriteString("\n")

	if len(p.Candidates) == 0 {
		// A file picker with no rows is closed by the engine; the command
		// picker stays open on a non-matching query.
		empty := "searching…"
		if p.Kind == engine.PickerCommand {
			empty = "no matches"
		}
		b.WriteString(t.PopupDesc.Render(empty))
		return t.PopupBox.Width(width).Render(b.String())
	}

	// Keep the selected row visible inside the window.
	start := 0
	if p.Selected >= popupMaxRows {
		start = p.Selected - popupMaxRows + 1
	}
	end := start + popupMaxRows
	if end > len(p.Candidates) {
		end = len(p.Candidates)
	}

	labelW := inner / 2
	if labelW < 12 {
		labelW = 12
	}
	for i := start; i < end; i++ {
		cand := p.Candidates[i]
		prefix := "  "
		style := t.PopupRow
		if i == p.Selected {
			prefix = "› "
			style = t.PopupSel
		}
		label := cand.Label
		if cand.File.IsFolder {
			label += "/"
		}
		label = truncate.StringWithTail(label, uint(labelW), "…")
		line := prefix + style.Render(label)
		descW := inner - labelW - 3
		if descW > 0 && strings.TrimSpace(cand.Description) != "" && cand.Description != cand.Label {
			line += " " + t.PopupDesc.Render(truncate.StringWithTail(cand.Description, uint(descW), "…"))
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if end < len(p.Candidates) {
		b.WriteString("\n")
		b.WriteString(t.PopupHint.Render("…"))
	}

	return t.PopupBox.Width(width).Render(b.String())
}
