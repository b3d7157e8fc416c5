package ai

import (
	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/core/ecs"
	"github.com/woomy144/Rimworld/internal/data"
	"github.com/woomy144/Rimworld/internal/world"
)

// Env is what every pawn of a map shares: the driver table and the
// default job givers in priority order.
type Env struct {
	Drivers *DriverTable
	Givers  []JobGiver
}

// DefaultEnv returns the built-in drivers and givers.
func DefaultEnv() *Env {
	return &Env{Drivers: NewDriverTable(), Givers: DefaultGivers()}
}

// RegisterClasses binds the pawn class to env. A nil env uses DefaultEnv.
func RegisterClasses(ct *world.ClassTable, env *Env) {
	if env == nil {
		env = DefaultEnv()
	}
	ct.Register(data.ClassPawn, func(t *world.Thing) any { return newPawn(t, env) })
}

// Pawn is the behaviour of an autonomous actor: it moves, carries, fights
// and runs jobs.
type Pawn struct {
	thing *world.Thing

	Jobs      *JobTracker
	Pather    *Pather
	Carry     *CarryTracker
	Stances   *StanceTracker
	Equipment *EquipmentTracker

	lastMap  *world.Map
	restored *pawnState
}

func newPawn(t *world.Thing, env *Env) *Pawn {
	p := &Pawn{thing: t}
	p.Jobs = newJobTracker(p, env.Drivers, env.Givers)
	p.Pather = &Pather{pawn: p}
	p.Carry = &CarryTracker{pawn: p}
	p.Stances = &StanceTracker{pawn: p}
	p.Equipment = &EquipmentTracker{pawn: p}
	return p
}

// PawnOf returns the pawn behaviour of t.
func PawnOf(t *world.Thing) (*Pawn, bool) {
	return world.BehaviourOf[*Pawn](t)
}

func (p *Pawn) ID() ecs.EntityID     { return p.thing.ID }
func (p *Pawn) Thing() *world.Thing  { return p.thing }
func (p *Pawn) Position() world.Cell { return p.thing.Position }
func (p *Pawn) Faction() string      { return p.thing.Faction }
func (p *Pawn) Target() world.Target { return world.ThingTarget(p.thing) }

// Map returns the map the pawn is on, or the one it just left while its
// despawn cleanup runs.
func (p *Pawn) Map() *world.Map {
	if m := p.thing.Map(); m != nil {
		return m
	}
	return p.lastMap
}

func (p *Pawn) log() *zap.Logger {
	if m := p.Map(); m != nil {
		return m.Log()
	}
	return zap.NewNop()
}

// HostileTo reports whether other belongs to a different faction. Things
// without a faction are nobody's enemy.
func (p *Pawn) HostileTo(other *world.Thing) bool {
	return other != nil && other != p.thing && p.thing.Faction != "" &&
		other.Faction != "" && other.Faction != p.thing.Faction
}

func (p *Pawn) SpawnSetup(m *world.Map, respawningAfterLoad bool) {
	p.lastMap = m
}

// PostLoadInit restores the saved job once every thing is back on the map.
func (p *Pawn) PostLoadInit() {
	if p.restored == nil {
		return
	}
	st := p.restored
	p.restored = nil
	p.applyState(st)
}

func (p *Pawn) Tick() {
	p.Stances.Tick()
	if !p.thing.Spawned() {
		return
	}
	p.Pather.Tick()
	if !p.thing.Spawned() {
		return
	}
	p.Jobs.JobTrackerTick()
}

func (p *Pawn) DeSpawned(m *world.Map, mode world.DestroyMode) {
	p.lastMap = m
	p.Jobs.StopAll(CondInterruptForced)
	p.Pather.StopDead()
	p.Stances.CancelBusy()
	if c := p.Carry.Carried; c != nil {
		p.Carry.Carried = nil
		if _, ok := m.TryPlaceThing(c, p.thing.Position); !ok {
			c.Destroy(world.DestroyVanish)
		}
	}
	if mode == world.DestroyKill {
		p.Equipment.DropPrimary(m, p.thing.Position)
	}
}

func (p *Pawn) Destroyed(mode world.DestroyMode) {
	p.Jobs.StopAll(CondInterruptForced)
}
