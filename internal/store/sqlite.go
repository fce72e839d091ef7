package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sidekick/internal/engine"
)

// SQLiteStore keeps sessions and message bodies in a single sqlite file.
type SQLiteStore struct {
	dbPath string
	db     *sql.DB
}

func NewSQLiteStore(root string) (*SQLiteStore, error) {
	if strings.TrimSpace(root) == "" {
		root = DefaultRoot()
	}
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	st := &SQLiteStore{dbPath: filepath.Join(root, "sidekick.db")}
	if err := st.init(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) init() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return err
	}
	// Keep sqlite responsive under contention.
	_, _ = db.Exec("PRAGMA busy_timeout = 5000;")
	_, _ = db.Exec("PRAGMA journal_mode = WAL;")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL;")

	schema := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			draft TEXT NOT NULL DEFAULT '',
			generating INTEGER NOT NULL DEFAULT 0,
			updated_at_ns INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at_ns);`,
		`CREATE TABLE IF NOT EXISTS messages (
			session_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			role TEXT NOT NULL,
			text TEXT NOT NULL,
			files_json TEXT,
			commands_json TEXT,
			sent_at_ns INTEGER NOT NULL,
			PRIMARY KEY (session_id, idx)
		);`,
		`CREATE TABLE IF NOT EXISTS current_session (
			slot INTEGER PRIMARY KEY CHECK (slot = 0),
			session_id TEXT NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return err
		}
	}
	s.db = db
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) List() ([]engine.SessionMeta, error) {
	rows, err := s.db.Query(`SELECT id, title, updated_at_ns FROM sessions ORDER BY updated_at_ns DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metas := []engine.SessionMeta{}
	for rows.Next() {
		var meta engine.SessionMeta
		var ns int64
		if err := rows.Scan(&meta.ID, &meta.Title, &ns); err != nil {
			return nil, err
		}
		meta.UpdatedAt = time.Unix(0, ns)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

func (s *SQLiteStore) Create() (engine.SessionMeta, error) {
	meta := engine.SessionMeta{ID: uuid.NewString(), UpdatedAt: time.Now()}
	_, err := s.db.Exec(`INSERT INTO sessions (id, title, updated_at_ns) VALUES (?, '', ?)`,
		meta.ID, meta.UpdatedAt.UnixNano())
	if err != nil {
		return engine.SessionMeta{}, err
	}
	return meta, nil
}

func (s *SQLiteStore) Current() (string, error) {
	var id string
	err := s.db.QueryRow(`SELECT session_id FROM current_session WHERE slot = 0`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("no current session")
	}
	return id, err
}

func (s *SQLiteStore) SetCurrent(id string) error {
	_, err := s.db.Exec(`INSERT INTO current_session (slot, session_id) VALUES (0, ?)
		ON CONFLICT(slot) DO UPDATE SET session_id = excluded.session_id`, id)
	return err
}

func (s *SQLiteStore) LoadSnapshot(id string) (engine.Snapshot, error) {
	var snap engine.Snapshot
	var generating int
	err := s.db.QueryRow(`SELECT draft, generating FROM sessions WHERE id = ?`, id).
		Scan(&snap.DraftText, &generating)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, errors.New("session not found")
	}
	if err != nil {
		return snap, err
	}
	snap.Generating = generating != 0

	rows, err := s.db.Query(`SELECT idx, role, text, files_json, commands_json, sent_at_ns
		FROM messages WHERE session_id = ? ORDER BY idx`, id)
	if err != nil {
		return snap, err
	}
	defer rows.Close()

	for rows.Next() {
		var m engine.Message
		var files, commands sql.NullString
		var role string
		var ns int64
		if err := rows.Scan(&m.Index, &role, &m.Text, &files, &commands, &ns); err != nil {
			return snap, err
		}
		m.Role = engine.Role(role)
		m.SentAt = time.Unix(0, ns)
		if files.Valid && files.String != "" {
			if err := json.Unmarshal([]byte(files.String), &m.Files); err != nil {
				return snap, err
			}
		}
		if commands.Valid && commands.String != "" {
			if err := json.Unmarshal([]byte(commands.String), &m.Commands); err != nil {
				return snap, err
			}
		}
		snap.Messages = append(snap.Messages, m)
	}
	return snap, rows.Err()
}

func (s *SQLiteStore) SaveSnapshot(id string, snap engine.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	generating := 0
	if snap.Generating {
		generating = 1
	}
	res, err := tx.Exec(`UPDATE sessions SET draft = ?, generating = ?, updated_at_ns = ? WHERE id = ?`,
		snap.DraftText, generating, time.Now().UnixNano(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New("session not found")
	}

	// Last writer wins: replace the message set wholesale.
	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, id); err != nil {
		return err
	}
	for _, m := range snap.Messages {
		var files, commands []byte
		if len(m.Files) > 0 {
			if files, err = json.Marshal(m.Files); err != nil {
				return err
			}
		}
		if len(m.Commands) > 0 {
			if commands, err = json.Marshal(m.Commands); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(`INSERT INTO messages (session_id, idx, role, text, files_json, commands_json, sent_at_ns)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, m.Index, string(m.Role), m.Text, nullable(files), nullable(commands), m.SentAt.UnixNano()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func (s *SQLiteStore) Rename(id, title string) error {
	res, err := s.db.Exec(`UPDATE sessions SET title = ?, updated_at_ns = ? WHERE id = ?`,
		title, time.Now().UnixNano(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New("session not found")
	}
	return nil
}

func (s *SQLiteStore) Delete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM messages WHERE session_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM current_session WHERE session_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) ClearAll() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range []string{
		`DELETE FROM messages`,
		`DELETE FROM sessions`,
		`DELETE FROM current_session`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}
