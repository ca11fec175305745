// Package highlight implements FileInfo's highlighting policy: a small
// persisted table mapping a file extension or MIME pattern to a display
// color, queried synchronously when a FileInfo's color field is first
// requested. This is deliberately separate from the in-memory thumbnail
// cache and from any persistence of that cache.
package highlight

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Rule maps an extension or a MIME-pattern prefix to a color name.
type Rule struct {
	Extension string // e.g. ".go", empty if MimePrefix is set
	MimePrefix string // e.g. "image/", empty if Extension is set
	Color     string // e.g. "#4a9eff"
}

// Store is a sqlite-backed highlight rule registry.
type Store struct {
	conn *sql.DB
}

// Open initializes the database connection and schema at dbPath, creating
// the file and a set of sensible default rules if it doesn't exist yet.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("highlight: create directory %s: %w", dir, err)
	}
	_, statErr := os.Stat(dbPath)
	firstRun := os.IsNotExist(statErr)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("highlight: open %s: %w", dbPath, err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		extension TEXT NOT NULL DEFAULT '',
		mime_prefix TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL
	);
	`
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("highlight: create schema: %w", err)
	}

	s := &Store{conn: conn}
	if firstRun {
		if err := s.seedDefaults(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) seedDefaults() error {
	defaults := []Rule{
		{MimePrefix: "image/", Color: "#4a9eff"},
		{MimePrefix: "video/", Color: "#ff6b4a"},
		{MimePrefix: "audio/", Color: "#4aff9e"},
		{Extension: ".go", Color: "#00add8"},
		{Extension: ".md", Color: "#888888"},
	}
	for _, r := range defaults {
		if _, err := s.conn.Exec(
			"INSERT INTO rules (extension, mime_prefix, color) VALUES (?, ?, ?)",
			r.Extension, r.MimePrefix, r.Color,
		); err != nil {
			return fmt.Errorf("highlight: seed defaults: %w", err)
		}
	}
	return nil
}

// ColorFor returns the highlight color for a file with the given name and
// MIME type, or "" if no rule matches. Extension rules are checked before
// MIME-prefix rules.
func (s *Store) ColorFor(name, mime string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" {
		var color string
		row := s.conn.QueryRow("SELECT color FROM rules WHERE extension = ? LIMIT 1", ext)
		if err := row.Scan(&color); err == nil {
			return color
		}
	}

	rows, err := s.conn.Query("SELECT mime_prefix, color FROM rules WHERE mime_prefix != ''")
	if err != nil {
		return ""
	}
	defer rows.Close()
	for rows.Next() {
		var prefix, color string
		if err := rows.Scan(&prefix, &color); err != nil {
			continue
		}
		if strings.HasPrefix(mime, prefix) {
			return color
		}
	}
	return ""
}

// AddRule inserts a new highlighting rule.
func (s *Store) AddRule(r Rule) error {
	_, err := s.conn.Exec(
		"INSERT INTO rules (extension, mime_prefix, color) VALUES (?, ?, ?)",
		r.Extension, r.MimePrefix, r.Color,
	)
	if err != nil {
		return fmt.Errorf("highlight: add rule: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
