package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/resolvetree/internal/schema"
	"github.com/roach88/resolvetree/internal/value"
)

// Clock supplies created_at timestamps. Ordering never depends on it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ErrNotFound is returned when no snapshot matches a reference.
var ErrNotFound = errors.New("schema snapshot not found")

// ErrAmbiguous is returned when a hash prefix matches more than one snapshot.
var ErrAmbiguous = errors.New("schema reference is ambiguous")

// minPrefix is the shortest hash prefix GetSchema accepts.
const minPrefix = 6

// Snapshot is one stored schema definition.
type Snapshot struct {
	Seq        int64              `json:"seq"`
	Hash       string             `json:"hash"`
	Label      string             `json:"label,omitempty"`
	Entities   int                `json:"entities"`
	CreatedAt  time.Time          `json:"createdAt"`
	Definition *schema.Definition `json:"definition,omitempty"`
}

// Canonicalize returns the canonical JSON of def and its content hash.
func Canonicalize(def *schema.Definition) ([]byte, string, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return nil, "", fmt.Errorf("marshal definition: %w", err)
	}
	v, err := value.Unmarshal(data)
	if err != nil {
		return nil, "", fmt.Errorf("convert definition: %w", err)
	}
	canonical, err := value.MarshalCanonical(v)
	if err != nil {
		return nil, "", fmt.Errorf("canonicalize definition: %w", err)
	}
	hash, err := value.Fingerprint(value.DomainSchema, v)
	if err != nil {
		return nil, "", err
	}
	return canonical, hash, nil
}

// PutSchema stores def under its content hash. Invalid definitions are
// rejected with schema.ValidationErrors.
//
// created is false when the hash was already stored; a non-empty label
// still replaces the stored one.
func (s *Store) PutSchema(ctx context.Context, def *schema.Definition, label string) (snap Snapshot, created bool, err error) {
	if errs := schema.Validate(def); len(errs) > 0 {
		return Snapshot{}, false, schema.ValidationErrors(errs)
	}
	canonical, hash, err := Canonicalize(def)
	if err != nil {
		return Snapshot{}, false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO schemas (hash, label, definition, entities, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, hash, label, string(canonical), len(def.Entities), s.clock.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("insert schema: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("rows affected: %w", err)
	}
	created = n == 1

	if !created && label != "" {
		if _, err := tx.ExecContext(ctx, `UPDATE schemas SET label = ? WHERE hash = ?`, label, hash); err != nil {
			return Snapshot{}, false, fmt.Errorf("update label: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, false, fmt.Errorf("commit: %w", err)
	}

	snap, err = s.getByHash(ctx, hash)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, created, nil
}

// GetSchema loads a snapshot by reference: a full hash, a label, "latest",
// or a unique hash prefix of at least six characters.
func (s *Store) GetSchema(ctx context.Context, ref string) (Snapshot, error) {
	if ref == "" {
		return Snapshot{}, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if ref == "latest" {
		return s.LatestSchema(ctx)
	}

	snap, err := s.getByHash(ctx, ref)
	if !errors.Is(err, ErrNotFound) {
		return snap, err
	}

	snap, err = s.getOne(ctx, `
		SELECT seq, hash, label, definition, entities, created_at
		FROM schemas WHERE label = ?
		ORDER BY seq DESC LIMIT 1
	`, ref)
	if !errors.Is(err, ErrNotFound) {
		return snap, err
	}

	if len(ref) < minPrefix || strings.ContainsAny(ref, "%_") {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, hash, label, definition, entities, created_at
		FROM schemas WHERE hash LIKE ? || '%'
		ORDER BY seq DESC LIMIT 2
	`, ref)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query schemas: %w", err)
	}
	matches, err := scanSnapshots(rows, true)
	if err != nil {
		return Snapshot{}, err
	}
	switch len(matches) {
	case 0:
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return Snapshot{}, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
	}
}

// LatestSchema returns the most recently stored snapshot.
func (s *Store) LatestSchema(ctx context.Context) (Snapshot, error) {
	return s.getOne(ctx, `
		SELECT seq, hash, label, definition, entities, created_at
		FROM schemas ORDER BY seq DESC LIMIT 1
	`)
}

// ListSchemas returns every snapshot newest first, without definitions.
func (s *Store) ListSchemas(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, hash, label, '', entities, created_at
		FROM schemas ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query schemas: %w", err)
	}
	snaps, err := scanSnapshots(rows, false)
	if err != nil {
		return nil, err
	}
	if snaps == nil {
		snaps = []Snapshot{}
	}
	return snaps, nil
}

func (s *Store) getByHash(ctx context.Context, hash string) (Snapshot, error) {
	return s.getOne(ctx, `
		SELECT seq, hash, label, definition, entities, created_at
		FROM schemas WHERE hash = ?
	`, hash)
}

func (s *Store) getOne(ctx context.Context, query string, args ...any) (Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query schemas: %w", err)
	}
	snaps, err := scanSnapshots(rows, true)
	if err != nil {
		return Snapshot{}, err
	}
	if len(snaps) == 0 {
		return Snapshot{}, ErrNotFound
	}
	return snaps[0], nil
}

// scanSnapshots reads and closes rows.
func scanSnapshots(rows *sql.Rows, withDefinition bool) ([]Snapshot, error) {
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var (
			snap      Snapshot
			defJSON   string
			createdAt string
		)
		if err := rows.Scan(&snap.Seq, &snap.Hash, &snap.Label, &defJSON, &snap.Entities, &createdAt); err != nil {
			return nil, fmt.Errorf("scan schema: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", snap.Hash, err)
		}
		snap.CreatedAt = t
		if withDefinition {
			var def schema.Definition
			if err := json.Unmarshal([]byte(defJSON), &def); err != nil {
				return nil, fmt.Errorf("unmarshal definition %s: %w", snap.Hash, err)
			}
			snap.Definition = &def
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schemas: %w", err)
	}
	return snaps, nil
}
