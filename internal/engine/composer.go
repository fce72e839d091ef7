package engine

import "strings"

// Composer owns the outgoing draft: text, attached file references and
// attached quick-action commands. Attachments keep insertion order and are
// unique (files by path, commands by exact id).
type Composer struct {
	Draft    string
	Files    []FileRef
	Commands []string
}

// AttachFile appends ref unless a file with the same path is already
// attached. Reports whether the set changed.
func (c *Composer) AttachFile(ref FileRef) bool {
	for _, f := range c.Files {
		if f.Path == ref.Path {
			return false
		}
	}
	c.Files = append(c.Files, ref)
	return true
}

// AttachCommand appends id unless already present.
func (c *Composer) AttachCommand(id string) bool {
	for _, existing := range c.Commands {
		if existing == id {
			return false
		}
	}
	c.Commands = append(c.Commands, id)
	return true
}

// RemoveFile drops the file at a rendered position. Out-of-range indices are
// a no-op; callers only ever pass indices they rendered.
func (c *Composer) RemoveFile(i int) {
	if i < 0 || i >= len(c.Files) {
		return
	}
	c.Files = append(c.Files[:i], c.Files[i+1:]...)
}

func (c *Composer) RemoveCommand(i int) {
	if i < 0 || i >= len(c.Commands) {
		return
	}
	c.Commands = append(c.Commands[:i], c.Commands[i+1:]...)
}

// Empty reports whether there is nothing to send: no trimmed text, no files,
// no commands.
func (c *Composer) Empty() bool {
	return strings.TrimSpace(c.Draft) == "" && len(c.Files) == 0 && len(c.Commands) == 0
}

// Take snapshots the current content as an outgoing payload and clears the
// composer atomically.
func (c *Composer) Take() SendRequest {
	req := SendRequest{
		Text:     strings.TrimSpace(c.Draft),
		Files:    append([]FileRef(nil), c.Files...),
		Commands: append([]string(nil), c.Commands...),
	}
	c.Reset()
	return req
}

func (c *Composer) Reset() {
	c.Draft = ""
	c.Files = nil
	c.Commands = nil
}
