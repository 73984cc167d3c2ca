// Package store keeps named scenarios in a SQLite database so they can be
// listed and re-run later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"rebalance-sim/internal/logging"
	"rebalance-sim/internal/settings"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when no scenario has the requested name.
var ErrNotFound = errors.New("scenario not found")

type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Close() error
}

// Entry is one row of the scenario listing.
type Entry struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store struct {
	db  DB
	log *logrus.Logger
	now func() time.Time
}

func OpenSQLite(dsn string) (DB, error) {
	return sql.Open("sqlite3", dsn)
}

func InitSchema(db DB) error {
	_, err := db.ExecContext(context.Background(), `CREATE TABLE IF NOT EXISTS scenarios(
		name TEXT PRIMARY KEY, settings TEXT NOT NULL, updated_at INTEGER NOT NULL
	)`)
	return err
}

func NewStore(db DB, log *logrus.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{db: db, log: log, now: time.Now}
}

// Save validates doc and inserts or replaces the scenario called name.
func (s *Store) Save(ctx context.Context, name string, doc settings.Document) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("scenario name is required")
	}
	if _, err := doc.ToConfig(); err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode scenario %q: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO scenarios(name,settings,updated_at) VALUES(?,?,?)
		ON CONFLICT(name) DO UPDATE SET settings=excluded.settings, updated_at=excluded.updated_at`,
		name, string(raw), s.now().Unix())
	if err != nil {
		return fmt.Errorf("save scenario %q: %w", name, err)
	}
	s.log.WithField("scenario", name).Debug("scenario saved")
	return nil
}

func (s *Store) Get(ctx context.Context, name string) (settings.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT settings FROM scenarios WHERE name=?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return settings.Document{}, ErrNotFound
	}
	if err != nil {
		return settings.Document{}, fmt.Errorf("load scenario %q: %w", name, err)
	}
	var doc settings.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return settings.Document{}, fmt.Errorf("decode scenario %q: %w", name, err)
	}
	return doc, nil
}

// List returns every stored scenario ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, updated_at FROM scenarios ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		var (
			name string
			ts   int64
		)
		if err := rows.Scan(&name, &ts); err != nil {
			s.log.WithError(err).Warn("skipping unreadable scenario row")
			continue
		}
		out = append(out, Entry{Name: name, UpdatedAt: time.Unix(ts, 0).UTC()})
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenarios WHERE name=?`, name)
	if err != nil {
		return fmt.Errorf("delete scenario %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
