package engine

import (
	"sort"
	"strings"
	"time"
)

// Session group labels, in display order.
const (
	GroupCurrent = "Current"
	GroupRecent  = "Recent"
	GroupOther   = "Other"
)

// recentWindow is how far back a session still counts as "Recent".
const recentWindow = 24 * time.Hour

// untitledLabel is the display fallback for sessions with an empty title.
// The raw empty title still participates in search matching.
const untitledLabel = "Untitled chat"

// Directory owns the list of known sessions and the active session id.
// Message bodies live in the store; this is metadata only.
type Directory struct {
	Sessions []SessionMeta
	ActiveID string
}

// SessionGroup is one rendered section of the session list.
type SessionGroup struct {
	Label    string
	Sessions []SessionMeta
}

// DisplayTitle is what the UI shows for a session.
func DisplayTitle(s SessionMeta) string {
	if strings.TrimSpace(s.Title) == "" {
		return untitledLabel
	}
	return s.Title
}

// List filters sessions by a case-insensitive substring match on the title
// and groups them: the active session is always its own Current group, then
// Recent (updated within 24 h, excluding Current), then Other. Groups that
// end up empty are omitted.
func (d *Directory) List(query string, now time.Time) []SessionGroup {
	query = strings.ToLower(strings.TrimSpace(query))

	var current, recent, other []SessionMeta
	for _, s := range d.Sessions {
		if !strings.Contains(strings.ToLower(s.Title), query) {
			continue
		}
		switch {
		case s.ID == d.ActiveID:
			current = append(current, s)
		case now.Sub(s.UpdatedAt) <= recentWindow:
			recent = append(recent, s)
		default:
			other = append(other, s)
		}
	}

	byUpdated := func(list []SessionMeta) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		})
	}
	byUpdated(recent)
	byUpdated(other)

	var groups []SessionGroup
	if len(current) > 0 {
		groups = append(groups, SessionGroup{Label: GroupCurrent, Sessions: current})
	}
	if len(recent) > 0 {
		groups = append(groups, SessionGroup{Label: GroupRecent, Sessions: recent})
	}
	if len(other) > 0 {
		groups = append(groups, SessionGroup{Label: GroupOther, Sessions: other})
	}
	return groups
}

// Find returns the metadata for a session id.
func (d *Directory) Find(id string) (SessionMeta, bool) {
	for _, s := range d.Sessions {
		if s.ID == id {
			return s, true
		}
	}
	return SessionMeta{}, false
}

// Replace swaps the full session list, as after a store refresh.
func (d *Directory) Replace(list []SessionMeta) {
	d.Sessions = append([]SessionMeta(nil), list...)
}
