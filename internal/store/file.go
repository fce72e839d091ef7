package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"sidekick/internal/engine"
)

// FileStore is the JSON-on-disk session store.
//
// Layout:
//
//	<root>/sessions/<sessionID>.json
//	<root>/current
type FileStore struct {
	Root string
}

type sessionFile struct {
	Meta     engine.SessionMeta `json:"meta"`
	Snapshot engine.Snapshot    `json:"snapshot"`
}

// DefaultRoot prefers the XDG data dir, falling back to ~/.local/share.
func DefaultRoot() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "sidekick", "storage")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "sidekick", "storage")
	}
	return filepath.Join(os.TempDir(), "sidekick", "storage")
}

func NewFileStore(root string) *FileStore {
	if strings.TrimSpace(root) == "" {
		root = DefaultRoot()
	}
	return &FileStore{Root: root}
}

func (s *FileStore) sessionsDir() string {
	return filepath.Join(s.Root, "sessions")
}

func (s *FileStore) sessionPath(id string) string {
	return filepath.Join(s.sessionsDir(), id+".json")
}

func (s *FileStore) currentPath() string {
	return filepath.Join(s.Root, "current")
}

func (s *FileStore) read(id string) (sessionFile, error) {
	var sf sessionFile
	b, err := os.ReadFile(s.sessionPath(id))
	if err != nil {
		return sf, err
	}
	if err := json.Unmarshal(b, &sf); err != nil {
		return sf, err
	}
	return sf, nil
}

func (s *FileStore) write(sf sessionFile) error {
	if strings.TrimSpace(sf.Meta.ID) == "" {
		return errors.New("missing session id")
	}
	if err := os.MkdirAll(s.sessionsDir(), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(&sf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.sessionPath(sf.Meta.ID), b, 0o644)
}

func (s *FileStore) List() ([]engine.SessionMeta, error) {
	ents, err := os.ReadDir(s.sessionsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []engine.SessionMeta{}, nil
		}
		return nil, err
	}
	metas := make([]engine.SessionMeta, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		sf, err := s.read(id)
		if err != nil {
			continue
		}
		metas = append(metas, sf.Meta)
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

func (s *FileStore) Create() (engine.SessionMeta, error) {
	meta := engine.SessionMeta{
		ID:        uuid.NewString(),
		UpdatedAt: time.Now(),
	}
	if err := s.write(sessionFile{Meta: meta}); err != nil {
		return engine.SessionMeta{}, err
	}
	return meta, nil
}

func (s *FileStore) Current() (string, error) {
	b, err := os.ReadFile(s.currentPath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (s *FileStore) SetCurrent(id string) error {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.currentPath(), []byte(id), 0o644)
}

func (s *FileStore) LoadSnapshot(id string) (engine.Snapshot, error) {
	sf, err := s.read(id)
	if err != nil {
		return engine.Snapshot{}, err
	}
	return sf.Snapshot, nil
}

func (s *FileStore) SaveSnapshot(id string, snap engine.Snapshot) error {
	sf, err := s.read(id)
	if err != nil {
		return err
	}
	sf.Snapshot = snap
	sf.Meta.UpdatedAt = time.Now()
	return s.write(sf)
}

func (s *FileStore) Rename(id, title string) error {
	sf, err := s.read(id)
	if err != nil {
		return err
	}
	sf.Meta.Title = title
	sf.Meta.UpdatedAt = time.Now()
	return s.write(sf)
}

func (s *FileStore) Delete(id string) error {
	if err := os.Remove(s.sessionPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	// Drop a now-dangling current pointer.
	if cur, err := s.Current(); err == nil && cur == id {
		_ = os.Remove(s.currentPath())
	}
	return nil
}

func (s *FileStore) ClearAll() error {
	if err := os.RemoveAll(s.sessionsDir()); err != nil {
		return err
	}
	_ = os.Remove(s.currentPath())
	return nil
}
