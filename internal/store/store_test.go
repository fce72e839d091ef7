package store

import (
	"testing"
	"time"

	"sidekick/internal/engine"
)

var (
	_ engine.SessionStore = (*FileStore)(nil)
	_ engine.SessionStore = (*SQLiteStore)(nil)
)

func eachStore(t *testing.T, fn func(t *testing.T, s engine.SessionStore)) {
	t.Helper()
	t.Run("file", func(t *testing.T) {
		fn(t, NewFileStore(t.TempDir()))
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLiteStore(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s)
	})
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	eachStore(t, func(t *testing.T, s engine.SessionStore) {
		meta, err := s.Create()
		if err != nil {
			t.Fatal(err)
		}

		snap := engine.Snapshot{
			Messages: []engine.Message{
				{
					Index: 0, Role: engine.RoleUser, Text: "look at this",
					Files:    []engine.FileRef{{Path: "utils.ts", Name: "utils.ts"}},
					Commands: []string{"fix"},
					SentAt:   time.Now().Truncate(time.Millisecond),
				},
				{Index: 1, Role: engine.RoleAssistant, Text: "done", SentAt: time.Now().Truncate(time.Millisecond)},
			},
			DraftText:  "half a thought",
			Generating: true,
		}
		if err := s.SaveSnapshot(meta.ID, snap); err != nil {
			t.Fatal(err)
		}

		got, err := s.LoadSnapshot(meta.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.DraftText != snap.DraftText || got.Generating != snap.Generating {
			t.Fatalf("snapshot fields lost: %+v", got)
		}
		if len(got.Messages) != 2 {
			t.Fatalf("messages lost: %d", len(got.Messages))
		}
		m := got.Messages[0]
		if m.Index != 0 || m.Role != engine.RoleUser || m.Text != "look at this" {
			t.Fatalf("message mangled: %+v", m)
		}
		if len(m.Files) != 1 || m.Files[0].Path != "utils.ts" {
			t.Fatalf("attachments lost: %+v", m.Files)
		}
		if len(m.Commands) != 1 || m.Commands[0] != "fix" {
			t.Fatalf("commands lost: %+v", m.Commands)
		}
	})
}

func TestStore_ListOrderedByRecency(t *testing.T) {
	eachStore(t, func(t *testing.T, s engine.SessionStore) {
		a, _ := s.Create()
		b, _ := s.Create()

		// Touching a makes it the most recently updated.
		time.Sleep(5 * time.Millisecond)
		if err := s.SaveSnapshot(a.ID, engine.Snapshot{DraftText: "x"}); err != nil {
			t.Fatal(err)
		}

		metas, err := s.List()
		if err != nil {
			t.Fatal(err)
		}
		if len(metas) != 2 {
			t.Fatalf("expected 2 sessions, got %d", len(metas))
		}
		if metas[0].ID != a.ID || metas[1].ID != b.ID {
			t.Fatalf("unexpected order: %s, %s", metas[0].ID, metas[1].ID)
		}
	})
}

func TestStore_RenamePersists(t *testing.T) {
	eachStore(t, func(t *testing.T, s engine.SessionStore) {
		meta, _ := s.Create()
		if err := s.Rename(meta.ID, "new title"); err != nil {
			t.Fatal(err)
		}
		metas, _ := s.List()
		if metas[0].Title != "new title" {
			t.Fatalf("title not persisted: %q", metas[0].Title)
		}
		if err := s.Rename("no-such-id", "x"); err == nil {
			t.Fatal("renaming a missing session should fail")
		}
	})
}

func TestStore_CurrentPointer(t *testing.T) {
	eachStore(t, func(t *testing.T, s engine.SessionStore) {
		if _, err := s.Current(); err == nil {
			t.Fatal("empty store should have no current session")
		}
		meta, _ := s.Create()
		if err := s.SetCurrent(meta.ID); err != nil {
			t.Fatal(err)
		}
		cur, err := s.Current()
		if err != nil || cur != meta.ID {
			t.Fatalf("current = %q, err = %v", cur, err)
		}

		// Deleting the current session drops the pointer.
		if err := s.Delete(meta.ID); err != nil {
			t.Fatal(err)
		}
		if cur, err := s.Current(); err == nil && cur == meta.ID {
			t.Fatal("dangling current pointer after delete")
		}
	})
}

func TestStore_ClearAll(t *testing.T) {
	eachStore(t, func(t *testing.T, s engine.SessionStore) {
		a, _ := s.Create()
		_, _ = s.Create()
		_ = s.SaveSnapshot(a.ID, engine.Snapshot{Messages: []engine.Message{{Index: 0, Role: engine.RoleUser, Text: "x"}}})

		if err := s.ClearAll(); err != nil {
			t.Fatal(err)
		}
		metas, err := s.List()
		if err != nil {
			t.Fatal(err)
		}
		if len(metas) != 0 {
			t.Fatalf("sessions survived ClearAll: %+v", metas)
		}
		if _, err := s.LoadSnapshot(a.ID); err == nil {
			t.Fatal("snapshot survived ClearAll")
		}
	})
}
