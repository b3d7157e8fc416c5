package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/config"
	"github.com/woomy144/Rimworld/internal/persist"
	"github.com/woomy144/Rimworld/internal/world"
)

// loadOrSeed restores the newest snapshot in store, or builds a new
// colony when there is none.
func loadOrSeed(ctx context.Context, store persist.SnapshotStore, cfg world.Config, colony config.ColonyConfig, log *zap.Logger) (*world.Map, bool, error) {
	if store != nil {
		snap, err := persist.LoadLatestSnapshot(ctx, store)
		switch {
		case err == nil:
			m, err := world.Restore(cfg, snap.Map)
			if err != nil {
				return nil, false, fmt.Errorf("restore snapshot at tick %d: %w", snap.Tick, err)
			}
			log.Info("snapshot restored", zap.Int("tick", snap.Tick), zap.Time("saved_at", snap.SavedAt))
			return m, true, nil
		case !errors.Is(err, persist.ErrNoSnapshot):
			return nil, false, fmt.Errorf("load snapshot: %w", err)
		}
	}
	m, err := world.NewMap(cfg)
	if err != nil {
		return nil, false, fmt.Errorf("new map: %w", err)
	}
	if err := seedColony(m, colony); err != nil {
		return nil, false, fmt.Errorf("seed colony: %w", err)
	}
	return m, false, nil
}

// seedColony places the starting pawns around the map centre, then the
// stockpile, items, benches with their bills and plants.
func seedColony(m *world.Map, colony config.ColonyConfig) error {
	if r := colony.Stockpile; r.Width > 0 && r.Height > 0 {
		m.Stockpile.AddRect(world.Cell{X: r.X, Z: r.Z}, r.Width, r.Height)
	}

	centre := world.Cell{X: m.Width / 2, Z: m.Height / 2}
	for i := 0; i < colony.Pawns; i++ {
		c := centre.Add(world.Cell{X: i - colony.Pawns/2})
		if _, err := m.SpawnNew("Colonist", c); err != nil {
			return fmt.Errorf("pawn %d: %w", i, err)
		}
	}

	for _, it := range colony.SeedItems {
		t, err := m.SpawnNew(it.Def, world.Cell{X: it.X, Z: it.Z})
		if err != nil {
			return err
		}
		if it.Count > 0 {
			t.StackCount = min(it.Count, t.Def.StackLimit)
		}
	}

	for _, b := range colony.Benches {
		t, err := m.SpawnNew(b.Def, world.Cell{X: b.X, Z: b.Z})
		if err != nil {
			return err
		}
		if b.Recipe == "" {
			continue
		}
		bench, ok := world.BehaviourOf[*world.Bench](t)
		if !ok {
			return fmt.Errorf("%s at (%d, %d) is not a bench", b.Def, b.X, b.Z)
		}
		recipe := m.Defs().Recipe(b.Recipe)
		if recipe == nil {
			return fmt.Errorf("recipe %q: %w", b.Recipe, world.ErrUnknownDef)
		}
		repeats := b.Repeats
		if repeats == 0 {
			repeats = world.RepeatForever
		}
		if _, err := bench.AddBill(recipe, repeats); err != nil {
			return err
		}
	}

	for _, p := range colony.Plants {
		t, err := m.SpawnNew(p.Def, world.Cell{X: p.X, Z: p.Z})
		if err != nil {
			return err
		}
		if plant, ok := world.BehaviourOf[*world.Plant](t); ok && p.Growth > 0 {
			plant.Growth = min(p.Growth, 1)
		}
		if p.Cut {
			m.Designations.Add(world.DesignateCutPlant, world.ThingTarget(t))
		}
	}
	return nil
}
