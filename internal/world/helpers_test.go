package world

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/woomy144/Rimworld/internal/data"
)

func testDefs(t *testing.T) *data.Registry {
	t.Helper()
	defs, err := data.LoadDefault()
	require.NoError(t, err)
	return defs
}

func newTestMap(t *testing.T, mutate ...func(*Config)) *Map {
	t.Helper()
	cfg := Config{
		Width:          20,
		Height:         20,
		Seed:           42,
		Defs:           testDefs(t),
		Temperature:    20,
		DefaultTerrain: "Soil",
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	m, err := NewMap(cfg)
	require.NoError(t, err)
	return m
}

func spawn(t *testing.T, m *Map, def string, x, z int) *Thing {
	t.Helper()
	th, err := m.SpawnNew(def, Cell{x, z})
	require.NoError(t, err)
	return th
}

func runTicks(m *Map, from, to int) {
	for tick := from; tick < to; tick++ {
		m.Tick(tick)
	}
}

// recorder is a test behaviour bound to the door class.
type recorder struct {
	thing  *Thing
	ticks  []int
	onTick func(p *recorder)
}

func (p *recorder) Tick() {
	p.ticks = append(p.ticks, p.thing.owner.TicksGame())
	if p.onTick != nil {
		p.onTick(p)
	}
}

func recorderMap(t *testing.T) *Map {
	ct := NewClassTable()
	ct.Register(data.ClassDoor, func(th *Thing) any { return &recorder{thing: th} })
	return newTestMap(t, func(c *Config) { c.Classes = ct })
}
