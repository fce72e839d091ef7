package engine

import (
	"testing"
	"time"
)

func TestDirectory_GroupsCurrentRecentOther(t *testing.T) {
	now := time.Now()
	d := Directory{
		Sessions: []SessionMeta{
			{ID: "a", Title: "alpha", UpdatedAt: now.Add(-2 * time.Hour)},
			{ID: "b", Title: "beta", UpdatedAt: now.Add(-48 * time.Hour)},
			{ID: "c", Title: "gamma", UpdatedAt: now.Add(-1 * time.Hour)},
		},
		ActiveID: "a",
	}

	groups := d.List("", now)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Label != GroupCurrent || groups[0].Sessions[0].ID != "a" {
		t.Fatalf("first group wrong: %+v", groups[0])
	}
	if groups[1].Label != GroupRecent || groups[1].Sessions[0].ID != "c" {
		t.Fatalf("recent group wrong: %+v", groups[1])
	}
	if groups[2].Label != GroupOther || groups[2].Sessions[0].ID != "b" {
		t.Fatalf("other group wrong: %+v", groups[2])
	}
}

func TestDirectory_ActiveNeverCountsAsRecent(t *testing.T) {
	// Active "a" at now-2h, "b" at now-48h. The active
	// session is its own group even though it falls inside the 24h window,
	// so no Recent group appears at all.
	now := time.Now()
	d := Directory{
		Sessions: []SessionMeta{
			{ID: "a", UpdatedAt: now.Add(-2 * time.Hour)},
			{ID: "b", UpdatedAt: now.Add(-48 * time.Hour)},
		},
		ActiveID: "a",
	}
	groups := d.List("", now)
	if len(groups) != 2 {
		t.Fatalf("expected Current and Other only, got %d groups", len(groups))
	}
	if groups[0].Label != GroupCurrent || groups[1].Label != GroupOther {
		t.Fatalf("labels wrong: %s, %s", groups[0].Label, groups[1].Label)
	}
}

func TestDirectory_FilterIsCaseInsensitive(t *testing.T) {
	now := time.Now()
	d := Directory{
		Sessions: []SessionMeta{
			{ID: "a", Title: "Fix the Parser", UpdatedAt: now},
			{ID: "b", Title: "refactor engine", UpdatedAt: now},
		},
	}
	groups := d.List("PARSER", now)
	if len(groups) != 1 || len(groups[0].Sessions) != 1 || groups[0].Sessions[0].ID != "a" {
		t.Fatalf("filter failed: %+v", groups)
	}
}

func TestDirectory_EmptyTitleMatchesEmptyQuery(t *testing.T) {
	now := time.Now()
	d := Directory{Sessions: []SessionMeta{{ID: "a", Title: "", UpdatedAt: now}}}

	if groups := d.List("", now); len(groups) != 1 {
		t.Fatalf("empty title should match empty query, got %+v", groups)
	}
	if groups := d.List("anything", now); len(groups) != 0 {
		t.Fatalf("empty title should not match a non-empty query, got %+v", groups)
	}
}

func TestDirectory_EmptyGroupsOmitted(t *testing.T) {
	now := time.Now()
	d := Directory{
		Sessions: []SessionMeta{{ID: "x", Title: "only one", UpdatedAt: now}},
		ActiveID: "x",
	}
	groups := d.List("", now)
	if len(groups) != 1 || groups[0].Label != GroupCurrent {
		t.Fatalf("expected a lone Current group, got %+v", groups)
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := DisplayTitle(SessionMeta{Title: "  "}); got != untitledLabel {
		t.Fatalf("blank title should display placeholder, got %q", got)
	}
	if got := DisplayTitle(SessionMeta{Title: "real"}); got != "real" {
		t.Fatalf("got %q", got)
	}
}
