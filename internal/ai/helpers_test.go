package ai

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/woomy144/Rimworld/internal/core/event"
	"github.com/woomy144/Rimworld/internal/data"
	"github.com/woomy144/Rimworld/internal/world"
)

func testDefs(t *testing.T) *data.Registry {
	t.Helper()
	defs, err := data.LoadDefault()
	require.NoError(t, err)
	return defs
}

func testConfig(t *testing.T, env *Env) world.Config {
	t.Helper()
	ct := world.NewClassTable()
	RegisterClasses(ct, env)
	return world.Config{
		Width:          20,
		Height:         20,
		Seed:           7,
		Defs:           testDefs(t),
		Classes:        ct,
		Bus:            event.NewBus(),
		Temperature:    20,
		DefaultTerrain: "Soil",
	}
}

// newTestMap builds a map whose pawns use the built-in drivers and the
// given givers. No givers means pawns only run jobs they are handed.
func newTestMap(t *testing.T, givers ...JobGiver) *world.Map {
	t.Helper()
	env := &Env{Drivers: NewDriverTable(), Givers: givers}
	m, err := world.NewMap(testConfig(t, env))
	require.NoError(t, err)
	return m
}

func spawnThing(t *testing.T, m *world.Map, def string, x, z int) *world.Thing {
	t.Helper()
	th, err := m.SpawnNew(def, world.Cell{X: x, Z: z})
	require.NoError(t, err)
	return th
}

func spawnPawn(t *testing.T, m *world.Map, x, z int) *Pawn {
	t.Helper()
	p, ok := PawnOf(spawnThing(t, m, "Colonist", x, z))
	require.True(t, ok)
	return p
}

func runTicks(m *world.Map, from, to int) {
	for tick := from; tick < to; tick++ {
		m.Tick(tick)
	}
}

func cell(x, z int) world.Target { return world.CellTarget(world.Cell{X: x, Z: z}) }

func job(t *testing.T, m *world.Map, def string, targets ...world.Target) *Job {
	t.Helper()
	d := m.Defs().Job(def)
	require.NotNil(t, d, def)
	return NewJob(d, targets...)
}

// scriptDriver lets a test supply the toils and targets to reserve.
type scriptDriver struct {
	reserve []world.Target
	toils   func(d *JobDriver) []*Toil
}

func (s *scriptDriver) TryMakePreToilReservations(d *JobDriver, errorOnFailed bool) bool {
	for _, target := range s.reserve {
		if !d.Reserve(target, 1, world.StackAll, errorOnFailed) {
			return false
		}
	}
	return true
}

func (s *scriptDriver) MakeNewToils(d *JobDriver) []*Toil { return s.toils(d) }

var scriptDef = &data.JobDef{Name: "Script", Driver: "Script", Suspendable: true, CasualInterruptible: true}

// withScript registers the script driver on the map's pawn env.
func withScript(p *Pawn, s *scriptDriver) *Job {
	p.Jobs.drivers.Register("Script", func() Driver { return s })
	return NewJob(scriptDef)
}

// funcGiver adapts a closure to JobGiver.
type funcGiver struct {
	name string
	fn   func(p *Pawn) *Job
}

func (g *funcGiver) Name() string            { return g.name }
func (g *funcGiver) TryGiveJob(p *Pawn) *Job { return g.fn(p) }
