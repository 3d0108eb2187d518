// Package store owns the embedded SQLite database holding accounts,
// categories, transactions and budgets. The database lives in memory; after
// every mutating operation it is serialized, base64-encoded and written to
// durable storage, and on startup the stored snapshot is restored before any
// query runs.
package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/peraapp/pera/internal/ident"
	"github.com/peraapp/pera/internal/storage"
)

const (
	// KeySnapshot is the durable-storage key holding the base64-encoded
	// database snapshot.
	KeySnapshot = "pera_db"
	// KeyCleared is the durable-storage key marking that the user wiped all
	// data; while present, default demo data is not seeded.
	KeyCleared = "pera_cleared"
)

// isoTimeFormat matches the wire format of transaction dates (millisecond
// precision, always UTC), so string comparison orders chronologically.
const isoTimeFormat = "2006-01-02T15:04:05.000Z"

// Store is the relational store engine plus the entity repository built on
// it. Construct with New; all operations wait until initialization finishes.
// If initialization fails, operations return empty results rather than
// errors, so a broken storage backend degrades instead of crashing callers.
type Store struct {
	storage storage.Store
	ids     *ident.Generator
	log     zerolog.Logger

	mu   sync.Mutex
	db   *sql.DB
	conn *sql.Conn

	done   chan struct{}
	failed bool
}

// New creates a Store and starts initialization in the background: restore
// the stored snapshot (or create a fresh database), evolve the schema if the
// snapshot predates transfer support, and seed default data on first run.
func New(st storage.Store, ids *ident.Generator, log zerolog.Logger) *Store {
	s := &Store{
		storage: st,
		ids:     ids,
		log:     log.With().Str("component", "store").Logger(),
		done:    make(chan struct{}),
	}
	go s.initialize()
	return s
}

func (s *Store) initialize() {
	defer close(s.done)

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		s.log.Error().Err(err).Msg("failed to open database")
		s.failed = true
		return
	}
	db.SetMaxOpenConns(1)

	// Pin a single connection: an in-memory database exists per connection,
	// and serialize/deserialize need the raw sqlite connection.
	conn, err := db.Conn(context.Background())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to pin database connection")
		s.failed = true
		return
	}
	s.db = db
	s.conn = conn

	blob, ok, err := s.storage.Get(KeySnapshot)
	if err != nil {
		s.log.Error().Err(err).Msg("durable storage unavailable")
		s.failed = true
		return
	}

	fresh := true
	if ok {
		if err := s.restoreSnapshot(blob); err != nil {
			// Corrupt snapshot: discard it and start over with an empty
			// database rather than failing initialization.
			s.log.Warn().Err(err).Msg("stored snapshot is corrupted, creating new database")
			_ = s.storage.Delete(KeySnapshot)
		} else {
			fresh = false
		}
	}

	ctx := context.Background()
	if fresh {
		if err := s.createTables(ctx); err != nil {
			s.log.Error().Err(err).Msg("failed to create schema")
			s.failed = true
			return
		}
	} else {
		if err := s.evolveSchema(ctx); err != nil {
			s.log.Warn().Err(err).Msg("could not update schema")
		}
	}

	if err := s.seedDefaults(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to seed default data")
	}
}

// ready blocks until initialization finishes. It reports false when the
// engine never became usable; operations then return empty results.
func (s *Store) ready(ctx context.Context) (bool, error) {
	select {
	case <-s.done:
		return !s.failed, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Close releases the database. The durable snapshot is already up to date
// because every mutation persists before returning.
func (s *Store) Close() error {
	<-s.done
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ResetIDs restarts the identifier sequence. Used by the migration driver
// after clearing the store so imported entities get a deterministic sequence.
func (s *Store) ResetIDs() {
	s.ids.Reset()
}

// restoreSnapshot loads a base64-encoded snapshot into the pinned connection.
func (s *Store) restoreSnapshot(blob []byte) error {
	raw, err := base64.StdEncoding.DecodeString(string(blob))
	if err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return s.conn.Raw(func(driverConn interface{}) error {
		c, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		if err := c.Deserialize(raw, ""); err != nil {
			return fmt.Errorf("deserialize snapshot: %w", err)
		}
		return nil
	})
}

// serialize exports the whole database as a binary snapshot.
func (s *Store) serialize() ([]byte, error) {
	var out []byte
	err := s.conn.Raw(func(driverConn interface{}) error {
		c, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		b, err := c.Serialize("")
		if err != nil {
			return fmt.Errorf("serialize database: %w", err)
		}
		out = b
		return nil
	})
	return out, err
}

// persist writes the current database snapshot to durable storage. Failures
// are logged, not propagated: the in-memory state stays usable and the next
// mutation retries the write.
func (s *Store) persist() {
	data, err := s.serialize()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to serialize database")
		return
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	if err := s.storage.Set(KeySnapshot, []byte(encoded)); err != nil {
		s.log.Error().Err(err).Msg("failed to persist database snapshot")
	}
}

// clearClearedFlag removes the sentinel suppressing default seed data. Called
// from every create operation: new user data means seeding stays off only
// because real data exists.
func (s *Store) clearClearedFlag() {
	if err := s.storage.Delete(KeyCleared); err != nil {
		s.log.Warn().Err(err).Msg("failed to remove cleared flag")
	}
}

// ClearAll deletes every row from every table and sets the cleared flag so
// demo data is not re-seeded on the next startup.
func (s *Store) ClearAll(ctx context.Context) error {
	if ok, err := s.ready(ctx); err != nil || !ok {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"transactions", "budgets", "categories", "accounts"} {
		if _, err := s.conn.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("ClearAll: %s: %w", table, err)
		}
	}
	s.persist()
	if err := s.storage.Set(KeyCleared, []byte("true")); err != nil {
		s.log.Warn().Err(err).Msg("failed to set cleared flag")
	}
	return nil
}

// execWithoutForeignKeys runs one statement with enforcement suspended on
// the pinned connection. Parent-row deletes use it: transactions and budgets
// keep their dangling references, which read paths tolerate. Callers hold
// s.mu, so no other statement can observe the window.
func (s *Store) execWithoutForeignKeys(ctx context.Context, query string, args ...interface{}) error {
	if _, err := s.conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return err
	}
	_, execErr := s.conn.ExecContext(ctx, query, args...)
	if _, err := s.conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil && execErr == nil {
		execErr = err
	}
	return execErr
}

// isoTime renders a timestamp in the canonical wire format.
func isoTime(t time.Time) string {
	return t.UTC().Format(isoTimeFormat)
}

// endOfCurrentMonth returns 23:59:59.999 on the last day of the current
// calendar month.
func endOfCurrentMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()+1, 0, 23, 59, 59, int(999*time.Millisecond), now.Location())
}

// round2 rounds once, to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
