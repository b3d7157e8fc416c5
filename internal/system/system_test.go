package system

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/ai"
	"github.com/woomy144/Rimworld/internal/core/event"
	coresys "github.com/woomy144/Rimworld/internal/core/system"
	"github.com/woomy144/Rimworld/internal/data"
	"github.com/woomy144/Rimworld/internal/persist"
	"github.com/woomy144/Rimworld/internal/world"
)

func newTestMap(t *testing.T) *world.Map {
	t.Helper()
	defs, err := data.LoadDefault()
	require.NoError(t, err)
	ct := world.NewClassTable()
	ai.RegisterClasses(ct, &ai.Env{Drivers: ai.NewDriverTable()})
	m, err := world.NewMap(world.Config{
		Width:          16,
		Height:         16,
		Seed:           11,
		Defs:           defs,
		Classes:        ct,
		Bus:            event.NewBus(),
		Temperature:    20,
		DefaultTerrain: "Soil",
	})
	require.NoError(t, err)
	return m
}

func openStore(t *testing.T) *persist.SQLiteStore {
	t.Helper()
	s, err := persist.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "colony.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func run(r *coresys.Runner, from, to int) {
	for tick := from; tick <= to; tick++ {
		r.Tick(tick)
	}
}

func TestCleanupRecyclesDestroyedThings(t *testing.T) {
	m := newTestMap(t)
	steel, err := m.SpawnNew("Steel", world.Cell{X: 2, Z: 2})
	require.NoError(t, err)

	r := coresys.NewRunner()
	r.Register(NewCleanupSystem(m))
	r.Register(NewThingTickSystem(m))

	m.Destroy(steel, world.DestroyVanish)
	require.NotNil(t, m.Thing(steel.ID))
	r.Tick(1)
	assert.Nil(t, m.Thing(steel.ID))
	assert.Equal(t, 1, m.TicksGame())
}

func TestEventsArriveNextTick(t *testing.T) {
	m := newTestMap(t)
	var seen []string
	event.Subscribe(m.Bus(), func(e event.ThingSpawned) { seen = append(seen, e.DefName) })

	r := coresys.NewRunner()
	r.Register(NewEventDispatchSystem(m.Bus()))

	_, err := m.SpawnNew("WoodLog", world.Cell{X: 1, Z: 1})
	require.NoError(t, err)
	assert.Empty(t, seen)
	r.Tick(1)
	assert.Equal(t, []string{"WoodLog"}, seen)
	r.Tick(2)
	assert.Len(t, seen, 1)
}

func TestJobStatsWritesFinishedJobs(t *testing.T) {
	m := newTestMap(t)
	store := openStore(t)

	pawnThing, err := m.SpawnNew("Colonist", world.Cell{X: 2, Z: 5})
	require.NoError(t, err)
	p, ok := ai.PawnOf(pawnThing)
	require.True(t, ok)
	walk := ai.NewJob(m.Defs().Job("Goto"), world.CellTarget(world.Cell{X: 6, Z: 5}))
	require.True(t, p.Jobs.StartJob(walk, ai.CondNone, false))

	stats := NewJobStatsSystem(m.Bus(), store, zap.NewNop(), 1)
	r := coresys.NewRunner()
	r.Register(NewEventDispatchSystem(m.Bus()))
	r.Register(NewThingTickSystem(m))
	r.Register(stats)

	run(r, 1, 200)
	assert.Equal(t, 1, stats.Count("succeeded"))
	assert.Zero(t, stats.Pending())

	n, err := store.JobLogCount(context.Background(), "succeeded")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

type failingWriter struct {
	fail    bool
	written []persist.JobLogEntry
}

func (w *failingWriter) WriteJobLog(_ context.Context, entries []persist.JobLogEntry) error {
	if w.fail {
		return errors.New("disk full")
	}
	w.written = append(w.written, entries...)
	return nil
}

func TestJobStatsKeepsEntriesUntilWritten(t *testing.T) {
	bus := event.NewBus()
	w := &failingWriter{fail: true}
	stats := NewJobStatsSystem(bus, w, zap.NewNop(), 0)

	event.Emit(bus, event.JobEnded{Tick: 4, PawnID: 9, JobID: 1, JobDef: "Wait", Condition: "interrupt_forced"})
	bus.SwapBuffers()
	bus.DispatchAll()

	assert.Error(t, stats.Flush(context.Background()))
	assert.Equal(t, 1, stats.Pending())

	w.fail = false
	stats.Update(5)
	assert.Zero(t, stats.Pending())
	require.Len(t, w.written, 1)
	assert.Equal(t, persist.JobLogEntry{Tick: 4, PawnID: 9, JobID: 1, JobDef: "Wait", Condition: "interrupt_forced"}, w.written[0])
	assert.Equal(t, 1, stats.Count("interrupt_forced"))
}

func TestAutosaveEveryInterval(t *testing.T) {
	m := newTestMap(t)
	_, err := m.SpawnNew("Steel", world.Cell{X: 3, Z: 3})
	require.NoError(t, err)
	store := openStore(t)

	saver := NewPersistenceSystem(m, store, zap.NewNop(), 10, 1)
	r := coresys.NewRunner()
	r.Register(NewThingTickSystem(m))
	r.Register(saver)

	run(r, 1, 25)
	assert.Equal(t, 2, saver.Saves())

	snap, err := persist.LoadLatestSnapshot(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 20, snap.Tick)

	require.NoError(t, saver.SaveNow(context.Background()))
	tick, _, err := store.LoadLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, tick)
}

func TestAutosaveDisabledWithoutStore(t *testing.T) {
	m := newTestMap(t)
	saver := NewPersistenceSystem(m, nil, zap.NewNop(), 1, 0)
	require.NotPanics(t, func() { saver.Update(1) })
	assert.NoError(t, saver.SaveNow(context.Background()))
	assert.Zero(t, saver.Saves())
}

func TestWeatherDrifts(t *testing.T) {
	m := newTestMap(t)
	sys := NewWeatherSystem(m, zap.NewNop(), 1)

	seen := map[float64]int{}
	for tick := 1; tick <= 60; tick++ {
		sys.Update(tick)
		seen[m.RainRate()]++
	}
	for rate := range seen {
		assert.Contains(t, []float64{rainClear, rainLight, rainHeavy}, rate)
	}
	assert.Greater(t, len(seen), 1)
}

func TestFixedWeather(t *testing.T) {
	m := newTestMap(t)
	m.SetRainRate(0.5)
	sys := NewWeatherSystem(m, zap.NewNop(), 0)
	for tick := 1; tick <= 10; tick++ {
		sys.Update(tick)
	}
	assert.Equal(t, 0.5, m.RainRate())
}
