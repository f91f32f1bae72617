// Package store persists navigation snapshots in a sqlite3 database so a
// restart can seed the parser with the last known state.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"gpsnav/internal/nmea"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id       TEXT PRIMARY KEY,
		session  TEXT NOT NULL,
		taken_at INTEGER NOT NULL,
		data     BLOB NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS snapshots_taken_at ON snapshots(taken_at);`,
}

type Store struct {
	db      *sql.DB
	session string
	now     func() time.Time
}

// Open creates or opens the database at path. Each Open starts a new
// session id that tags every row it saves.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("schema: %w", err)
		}
	}
	return &Store{db: db, session: uuid.NewString(), now: time.Now}, nil
}

func (s *Store) Session() string { return s.session }

func (s *Store) Save(ctx context.Context, snap nmea.Snapshot) error {
	data, err := snap.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots(id, session, taken_at, data) VALUES(?, ?, ?, ?)`,
		uuid.NewString(), s.session, s.now().UTC().UnixNano(), data)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recently saved snapshot across all sessions.
func (s *Store) Latest(ctx context.Context) (nmea.Snapshot, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots ORDER BY taken_at DESC, rowid DESC LIMIT 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nmea.Snapshot{}, false, nil
	}
	if err != nil {
		return nmea.Snapshot{}, false, fmt.Errorf("latest snapshot: %w", err)
	}
	var snap nmea.Snapshot
	if err := snap.UnmarshalBinary(data); err != nil {
		return nmea.Snapshot{}, false, fmt.Errorf("latest snapshot: %w", err)
	}
	return snap, true, nil
}

// Prune deletes all but the newest keep rows.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY taken_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
