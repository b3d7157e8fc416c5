package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/woomy144/Rimworld/internal/core/system"
	"github.com/woomy144/Rimworld/internal/persist"
	"github.com/woomy144/Rimworld/internal/world"
)

const saveTimeout = 5 * time.Second

// PersistenceSystem snapshots the map every interval ticks and keeps the
// newest few. A nil store disables it. Phase 3 (Persist).
type PersistenceSystem struct {
	m         *world.Map
	store     persist.SnapshotStore
	log       *zap.Logger
	tickCount int
	interval  int // auto-save every N ticks
	keep      int // snapshots kept after each save, 0 = all
	saves     int
}

func NewPersistenceSystem(m *world.Map, store persist.SnapshotStore, log *zap.Logger, intervalTicks, keep int) *PersistenceSystem {
	return &PersistenceSystem{
		m:        m,
		store:    store,
		log:      log,
		interval: intervalTicks,
		keep:     keep,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ int) {
	if s.store == nil || s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.SaveNow(ctx); err != nil {
		s.log.Error("autosave failed", zap.Int("tick", s.m.TicksGame()), zap.Error(err))
	}
}

// SaveNow writes a snapshot immediately. Called on shutdown so the last
// ticks since the previous autosave are not lost.
func (s *PersistenceSystem) SaveNow(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	snap, err := persist.Capture(s.m)
	if err != nil {
		return err
	}
	size, err := persist.SaveSnapshot(ctx, s.store, snap)
	if err != nil {
		return err
	}
	s.saves++
	s.log.Info("snapshot saved", zap.Int("tick", snap.Tick), zap.Int("bytes", size))

	if s.keep > 0 {
		if err := s.store.Prune(ctx, s.keep); err != nil {
			s.log.Warn("prune snapshots", zap.Error(err))
		}
	}
	return nil
}

// Saves reports how many snapshots this system wrote.
func (s *PersistenceSystem) Saves() int { return s.saves }
