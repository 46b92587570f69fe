package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// schemaSQL creates the snapshot tables. The full artifact lives in
// snapshots.meta as canonical CBOR; destination_keys mirrors the
// per-attribute bits so single keys can be queried without decoding
// the blob.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	digest     TEXT NOT NULL,
	semantics  INTEGER NOT NULL,
	meta       BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);

CREATE TABLE IF NOT EXISTS destination_keys (
	snapshot_id TEXT NOT NULL,
	dest_ip     TEXT NOT NULL,
	attr        TEXT NOT NULL,
	bits        TEXT NOT NULL,
	PRIMARY KEY (snapshot_id, dest_ip, attr)
);
`

// StoreConfig contains configuration for the SQLite snapshot store.
type StoreConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the
	// database. Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultStoreConfig returns the default store configuration.
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Path:         "data/snapshots.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// Info is a snapshot listing entry: the metadata row without the
// decoded artifact.
type Info struct {
	ID        string
	CreatedAt time.Time
	Digest    string
}

// Store persists compiled snapshots in SQLite.
type Store struct {
	db            *sql.DB
	config        *StoreConfig
	preparedStmts map[string]*sql.Stmt
	mu            sync.RWMutex
	logger        *slog.Logger
}

// NewStore opens (creating if necessary) a SQLite snapshot store.
func NewStore(config *StoreConfig) (*Store, error) {
	if config == nil {
		config = DefaultStoreConfig()
	}

	logger := slog.Default().With("component", "snapshot.store")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &Store{
		db:            db,
		config:        config,
		preparedStmts: make(map[string]*sql.Stmt),
		logger:        logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("snapshot store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema, enables WAL mode, and
// prepares the hot-path statements.
func (s *Store) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	stmts := map[string]string{
		"insert_snapshot": `INSERT INTO snapshots (id, created_at, digest, semantics, meta) VALUES (?, ?, ?, ?, ?)`,
		"insert_key":      `INSERT INTO destination_keys (snapshot_id, dest_ip, attr, bits) VALUES (?, ?, ?, ?)`,
		"get_meta":        `SELECT meta FROM snapshots WHERE id = ?`,
		"latest_meta":     `SELECT meta FROM snapshots ORDER BY created_at DESC, id DESC LIMIT 1`,
	}
	for name, query := range stmts {
		stmt, err := s.db.Prepare(query)
		if err != nil {
			return NewStorageError("sqlite", "prepare_"+name, err)
		}
		s.preparedStmts[name] = stmt
	}

	return nil
}

// Save persists a snapshot. The snapshot must be sealed; Save refuses
// unsigned artifacts so the store never holds an unverifiable row.
func (s *Store) Save(ctx context.Context, snap *Snapshot) error {
	if snap.Digest == "" {
		return NewStorageError("sqlite", "save", fmt.Errorf("snapshot %q has no digest", snap.ID))
	}

	meta, err := Encode(snap)
	if err != nil {
		return NewStorageError("sqlite", "encode", err)
	}

	semantics := 0
	if snap.UsesTrustThreshold() {
		semantics = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStorageError("sqlite", "begin", err)
	}
	defer tx.Rollback()

	_, err = tx.StmtContext(ctx, s.preparedStmts["insert_snapshot"]).ExecContext(ctx,
		snap.ID,
		snap.CreatedAt.UTC().Format(time.RFC3339Nano),
		snap.Digest,
		semantics,
		meta,
	)
	if err != nil {
		return NewStorageError("sqlite", "insert_snapshot", err)
	}

	insertKey := tx.StmtContext(ctx, s.preparedStmts["insert_key"])
	for _, key := range snap.Keys {
		for attr, bits := range key.Bits {
			if _, err := insertKey.ExecContext(ctx, snap.ID, key.DestinationIP, attr, bits); err != nil {
				return NewStorageError("sqlite", "insert_key", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return NewStorageError("sqlite", "commit", err)
	}

	s.logger.Debug("snapshot saved",
		"snapshot_id", snap.ID,
		"digest", snap.Digest,
		"destination_count", len(snap.Keys),
	)

	return nil
}

// Get retrieves a snapshot by ID. Returns ErrNotFound if no such
// snapshot exists.
func (s *Store) Get(ctx context.Context, id string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var meta []byte
	err := s.preparedStmts["get_meta"].QueryRowContext(ctx, id).Scan(&meta)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, NewStorageError("sqlite", "get", err)
	}

	snap, err := Decode(meta)
	if err != nil {
		return nil, NewStorageError("sqlite", "decode", err)
	}
	return snap, nil
}

// Latest retrieves the most recently created snapshot. Returns
// ErrNotFound when the store is empty.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var meta []byte
	err := s.preparedStmts["latest_meta"].QueryRowContext(ctx).Scan(&meta)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, NewStorageError("sqlite", "latest", err)
	}

	snap, err := Decode(meta)
	if err != nil {
		return nil, NewStorageError("sqlite", "decode", err)
	}
	return snap, nil
}

// List returns snapshot metadata, newest first. A non-positive limit
// lists everything.
func (s *Store) List(ctx context.Context, limit int) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, created_at, digest FROM snapshots ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, NewStorageError("sqlite", "list", err)
	}
	defer rows.Close()

	infos := []Info{}
	for rows.Next() {
		var info Info
		var createdAt string
		if err := rows.Scan(&info.ID, &createdAt, &info.Digest); err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		info.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, NewStorageError("sqlite", "parse_created_at", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list", err)
	}

	return infos, nil
}

// Prune deletes all but the newest keep snapshots along with their
// destination-key rows. Returns the number of snapshots removed.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, NewStorageError("sqlite", "begin", err)
	}
	defer tx.Rollback()

	// keep N newest; both tables share the same victim set.
	victims := `SELECT id FROM snapshots ORDER BY created_at DESC, id DESC LIMIT -1 OFFSET ?`

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM destination_keys WHERE snapshot_id IN (`+victims+`)`, keep); err != nil {
		return 0, NewStorageError("sqlite", "prune_keys", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id IN (`+victims+`)`, keep)
	if err != nil {
		return 0, NewStorageError("sqlite", "prune", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "rows_affected", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, NewStorageError("sqlite", "commit", err)
	}

	if deleted > 0 {
		s.logger.Info("snapshots pruned",
			"deleted_count", deleted,
			"kept", keep,
		)
	}

	return int(deleted), nil
}

// Close releases prepared statements and the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, stmt := range s.preparedStmts {
		if err := stmt.Close(); err != nil {
			s.logger.Warn("failed to close prepared statement", "name", name, "error", err)
		}
	}

	if err := s.db.Close(); err != nil {
		return NewStorageError("sqlite", "close", err)
	}
	return nil
}
