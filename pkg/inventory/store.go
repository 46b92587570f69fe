package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"osprey-hq/talon/pkg/abac/entity"
)

// ErrNotFound is returned when no entity row matches a lookup.
var ErrNotFound = errors.New("entity not found")

// Config configures the inventory store.
type Config struct {
	// Path is the SQLite database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

const storeSchema = `
CREATE TABLE IF NOT EXISTS source_entities (
	ip          TEXT PRIMARY KEY,
	description TEXT NOT NULL DEFAULT '',
	attributes  TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS destination_entities (
	ip          TEXT PRIMARY KEY,
	description TEXT NOT NULL DEFAULT '',
	attributes  TEXT NOT NULL DEFAULT '{}'
);
`

// Store keeps the entity inventory in SQLite. Attributes are stored
// as the same JSON object the entity file format uses and go back
// through the entity parser on every read, so rows with unknown
// attribute keys are hard errors, never silently dropped.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *slog.Logger

	putSource  *sql.Stmt
	getSource  *sql.Stmt
	putDest    *sql.Stmt
	getDest    *sql.Stmt
	deleteStmt map[string]*sql.Stmt
}

// NewStore opens (creating if necessary) an inventory store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("inventory: db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{
		db:         db,
		logger:     slog.Default().With("component", "inventory"),
		deleteStmt: make(map[string]*sql.Stmt),
	}

	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("inventory store initialized", "path", cfg.Path)

	return s, nil
}

func (s *Store) prepareStatements() error {
	var err error

	if s.putSource, err = s.db.Prepare(
		`INSERT INTO source_entities (ip, description, attributes) VALUES (?, ?, ?)
		 ON CONFLICT(ip) DO UPDATE SET description = excluded.description, attributes = excluded.attributes`); err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	if s.getSource, err = s.db.Prepare(
		`SELECT description, attributes FROM source_entities WHERE ip = ?`); err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	if s.putDest, err = s.db.Prepare(
		`INSERT INTO destination_entities (ip, description, attributes) VALUES (?, ?, ?)
		 ON CONFLICT(ip) DO UPDATE SET description = excluded.description, attributes = excluded.attributes`); err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	if s.getDest, err = s.db.Prepare(
		`SELECT description, attributes FROM destination_entities WHERE ip = ?`); err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	for _, table := range []string{"source_entities", "destination_entities"} {
		stmt, err := s.db.Prepare(`DELETE FROM ` + table + ` WHERE ip = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		s.deleteStmt[table] = stmt
	}

	return nil
}

// PutSource inserts or replaces a source entity.
func (s *Store) PutSource(ctx context.Context, src *entity.Source) error {
	attrs, err := sourceAttributesJSON(src)
	if err != nil {
		return fmt.Errorf("encoding source %q: %w", src.IP, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.putSource.ExecContext(ctx, src.IP, src.Description, string(attrs)); err != nil {
		return fmt.Errorf("storing source %q: %w", src.IP, err)
	}
	return nil
}

// GetSource retrieves a source entity by IP.
func (s *Store) GetSource(ctx context.Context, ip string) (*entity.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var description, attributes string
	err := s.getSource.QueryRowContext(ctx, ip).Scan(&description, &attributes)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading source %q: %w", ip, err)
	}

	return decodeSourceRow(ip, description, []byte(attributes))
}

// ListSources returns all source entities ordered by IP.
func (s *Store) ListSources(ctx context.Context) ([]*entity.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT ip, description, attributes FROM source_entities ORDER BY ip`)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var sources []*entity.Source
	for rows.Next() {
		var ip, description, attributes string
		if err := rows.Scan(&ip, &description, &attributes); err != nil {
			return nil, fmt.Errorf("scanning source row: %w", err)
		}
		src, err := decodeSourceRow(ip, description, []byte(attributes))
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// DeleteSource removes a source entity. Returns ErrNotFound if no row
// matched.
func (s *Store) DeleteSource(ctx context.Context, ip string) error {
	return s.delete(ctx, "source_entities", ip)
}

// CountSources returns the number of stored source entities.
func (s *Store) CountSources(ctx context.Context) (int, error) {
	return s.count(ctx, "source_entities")
}

// PutDestination inserts or replaces a destination entity.
func (s *Store) PutDestination(ctx context.Context, dst *entity.Destination) error {
	attrs, err := destinationAttributesJSON(dst)
	if err != nil {
		return fmt.Errorf("encoding destination %q: %w", dst.IP, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.putDest.ExecContext(ctx, dst.IP, dst.Description, string(attrs)); err != nil {
		return fmt.Errorf("storing destination %q: %w", dst.IP, err)
	}
	return nil
}

// GetDestination retrieves a destination entity by IP.
func (s *Store) GetDestination(ctx context.Context, ip string) (*entity.Destination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var description, attributes string
	err := s.getDest.QueryRowContext(ctx, ip).Scan(&description, &attributes)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading destination %q: %w", ip, err)
	}

	return decodeDestinationRow(ip, description, []byte(attributes))
}

// ListDestinations returns all destination entities ordered by IP.
func (s *Store) ListDestinations(ctx context.Context) ([]*entity.Destination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT ip, description, attributes FROM destination_entities ORDER BY ip`)
	if err != nil {
		return nil, fmt.Errorf("listing destinations: %w", err)
	}
	defer rows.Close()

	var dests []*entity.Destination
	for rows.Next() {
		var ip, description, attributes string
		if err := rows.Scan(&ip, &description, &attributes); err != nil {
			return nil, fmt.Errorf("scanning destination row: %w", err)
		}
		dst, err := decodeDestinationRow(ip, description, []byte(attributes))
		if err != nil {
			return nil, err
		}
		dests = append(dests, dst)
	}
	return dests, rows.Err()
}

// DeleteDestination removes a destination entity. Returns ErrNotFound
// if no row matched.
func (s *Store) DeleteDestination(ctx context.Context, ip string) error {
	return s.delete(ctx, "destination_entities", ip)
}

// CountDestinations returns the number of stored destination entities.
func (s *Store) CountDestinations(ctx context.Context) (int, error) {
	return s.count(ctx, "destination_entities")
}

// Import stores every entity of a parsed set, replacing rows that
// share an IP. Returns how many sources and destinations were
// written.
func (s *Store) Import(ctx context.Context, set *entity.Inventory) (int, int, error) {
	for _, src := range set.Sources {
		if err := s.PutSource(ctx, src); err != nil {
			return 0, 0, err
		}
	}
	for _, dst := range set.Destinations {
		if err := s.PutDestination(ctx, dst); err != nil {
			return 0, 0, err
		}
	}
	return len(set.Sources), len(set.Destinations), nil
}

func (s *Store) delete(ctx context.Context, table, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.deleteStmt[table].ExecContext(ctx, ip)
	if err != nil {
		return fmt.Errorf("deleting %q from %s: %w", ip, table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) count(ctx context.Context, table string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// Close releases prepared statements and the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range []*sql.Stmt{s.putSource, s.getSource, s.putDest, s.getDest} {
		if stmt != nil {
			stmt.Close()
		}
	}
	for _, stmt := range s.deleteStmt {
		stmt.Close()
	}
	return s.db.Close()
}
