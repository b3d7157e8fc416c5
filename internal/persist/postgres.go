package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PostgresStore keeps snapshots and the job log in Postgres.
type PostgresStore struct {
	db *DB
}

func NewPostgresStore(db *DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, tick int, blob []byte) error {
	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO snapshots (tick, blob) VALUES ($1, $2)`, int64(tick), blob,
	)
	return err
}

func (s *PostgresStore) LoadLatest(ctx context.Context) (int, []byte, error) {
	var (
		tick int64
		blob []byte
	)
	err := s.db.Pool.QueryRow(ctx,
		`SELECT tick, blob FROM snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&tick, &blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, ErrNoSnapshot
	}
	if err != nil {
		return 0, nil, fmt.Errorf("load latest snapshot: %w", err)
	}
	return int(tick), blob, nil
}

func (s *PostgresStore) Prune(ctx context.Context, keep int) error {
	_, err := s.db.Pool.Exec(ctx,
		`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT $1)`,
		keep,
	)
	return err
}

// WriteJobLog writes a batch of finished jobs in a single transaction.
func (s *PostgresStore) WriteJobLog(ctx context.Context, entries []JobLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("job log begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO job_log (tick, pawn_id, job_id, job_def, condition)
			 VALUES ($1, $2, $3, $4, $5)`,
			int64(e.Tick), int64(e.PawnID), int64(e.JobID), e.JobDef, e.Condition,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("job log insert: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
