package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps snapshots and the job log in a single local file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates
// it.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("empty sqlite path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := RunSQLiteMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, tick int, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (tick, blob) VALUES (?, ?)`, int64(tick), blob,
	)
	return err
}

func (s *SQLiteStore) LoadLatest(ctx context.Context) (int, []byte, error) {
	var (
		tick int64
		blob []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT tick, blob FROM snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&tick, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, ErrNoSnapshot
	}
	if err != nil {
		return 0, nil, fmt.Errorf("load latest snapshot: %w", err)
	}
	return int(tick), blob, nil
}

func (s *SQLiteStore) Prune(ctx context.Context, keep int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`,
		keep,
	)
	return err
}

// WriteJobLog writes a batch of finished jobs in a single transaction.
func (s *SQLiteStore) WriteJobLog(ctx context.Context, entries []JobLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("job log begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO job_log (tick, pawn_id, job_id, job_def, condition) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("job log prepare: %w", err)
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, int64(e.Tick), int64(e.PawnID), int64(e.JobID), e.JobDef, e.Condition); err != nil {
			return fmt.Errorf("job log insert: %w", err)
		}
	}
	return tx.Commit()
}

// JobLogCount returns how many finished jobs are recorded for a condition,
// or overall when condition is empty.
func (s *SQLiteStore) JobLogCount(ctx context.Context, condition string) (int, error) {
	var n int
	q := `SELECT COUNT(*) FROM job_log`
	args := []any{}
	if condition != "" {
		q += ` WHERE condition = ?`
		args = append(args, condition)
	}
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
