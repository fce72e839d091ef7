package tui

import (
	"log/slog"
	"os"
	"os/exec"
)

// EditorOpener hands files to the host system. It prefers $VISUAL/$EDITOR and
// falls back to xdg-open. Fire-and-forget: failures only get logged, since
// the TUI owns the terminal and cannot surface an external editor's errors.
type EditorOpener struct {
	Log *slog.Logger
}

func (o EditorOpener) Open(path string) {
	prog := os.Getenv("VISUAL")
	if prog == "" {
		prog = os.Getenv("EDITOR")
	}
	if prog == "" {
		prog = "xdg-open"
	}
	cmd := exec.Command(prog, path)
	if err := cmd.Start(); err != nil {
		if o.Log != nil {
			o.Log.Debug("open file failed", "path", path, "err", err)
		}
		return
	}
	go func() { _ = cmd.Wait() }()
}
