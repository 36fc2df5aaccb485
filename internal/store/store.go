package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the user_version written by applySchema.
//
//	1  snapshots table
const schemaVersion = 1

// connPragmas are set through the DSN so every connection gets them, and
// are checked after opening. want is the value PRAGMA reports back.
var connPragmas = []struct {
	param, value, pragma, want string
}{
	{"_journal_mode", "WAL", "journal_mode", "wal"},
	{"_synchronous", "NORMAL", "synchronous", "1"},
	{"_busy_timeout", "5000", "busy_timeout", "5000"},
}

// Store holds schema snapshots in one SQLite file.
type Store struct {
	db    *sql.DB
	clock Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp created_at.
func WithClock(c Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// Open opens the store at path, creating the file and its tables when
// missing. Opening an existing store leaves its snapshots untouched.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One writer at a time; a single connection also serializes readers
	// behind in-flight label updates.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, clock: systemClock{}}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Set(p.param, p.value)
	}
	return "file:" + path + "?" + q.Encode()
}

func (s *Store) init() error {
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	for _, p := range connPragmas {
		if err := s.verifyPragma(p.pragma, p.want); err != nil {
			return err
		}
	}
	return s.applySchema()
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applySchema creates missing tables and stamps user_version. A database
// written by a newer version is refused.
func (s *Store) applySchema() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database version %d is newer than supported version %d", version, schemaVersion)
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	if _, err := s.db.Exec("PRAGMA user_version = " + strconv.Itoa(schemaVersion)); err != nil {
		return fmt.Errorf("write user_version: %w", err)
	}
	return nil
}

func (s *Store) verifyPragma(name, want string) error {
	var got string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&got); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if got != want {
		return fmt.Errorf("pragma %s = %q, want %q", name, got, want)
	}
	return nil
}
