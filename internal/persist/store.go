package persist

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/config"
)

// SnapshotStore keeps encoded snapshots, newest last.
type SnapshotStore interface {
	Save(ctx context.Context, tick int, blob []byte) error
	// LoadLatest returns ErrNoSnapshot when nothing was saved yet.
	LoadLatest(ctx context.Context) (tick int, blob []byte, err error)
	// Prune keeps only the newest keep snapshots.
	Prune(ctx context.Context, keep int) error
	Close() error
}

// JobLogEntry records one finished job.
type JobLogEntry struct {
	Tick      int
	PawnID    uint64
	JobID     uint64
	JobDef    string
	Condition string
}

// JobLogWriter appends finished jobs in one transaction per batch.
type JobLogWriter interface {
	WriteJobLog(ctx context.Context, entries []JobLogEntry) error
}

// Store is what the backends implement.
type Store interface {
	SnapshotStore
	JobLogWriter
}

// Open connects the configured backend and applies its migrations. The
// "none" backend returns a nil store.
func Open(ctx context.Context, cfg config.PersistenceConfig, log *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "none", "":
		return nil, nil
	case "postgres":
		db, err := NewDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := RunPostgresMigrations(ctx, db.Pool); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgresStore(db), nil
	case "sqlite":
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("opened sqlite store", zap.String("path", cfg.SQLitePath))
		return s, nil
	}
	return nil, fmt.Errorf("unknown persistence backend %q", cfg.Backend)
}

// LoadLatestSnapshot fetches and decodes the newest snapshot in s.
func LoadLatestSnapshot(ctx context.Context, s SnapshotStore) (*Snapshot, error) {
	_, blob, err := s.LoadLatest(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(blob)
}

// SaveSnapshot encodes snap and stores it under its tick.
func SaveSnapshot(ctx context.Context, s SnapshotStore, snap *Snapshot) (int, error) {
	blob, err := Encode(snap)
	if err != nil {
		return 0, err
	}
	if err := s.Save(ctx, snap.Tick, blob); err != nil {
		return 0, fmt.Errorf("save snapshot at tick %d: %w", snap.Tick, err)
	}
	return len(blob), nil
}
