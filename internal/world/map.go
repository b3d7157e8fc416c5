package world

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/core/ecs"
	"github.com/woomy144/Rimworld/internal/core/event"
	"github.com/woomy144/Rimworld/internal/data"
	"github.com/woomy144/Rimworld/internal/scripting"
)

// Config describes a new map.
type Config struct {
	Width, Height  int
	Seed           int64
	Defs           *data.Registry
	Formulas       scripting.Formulas // nil = built-in Go formulas
	Classes        *ClassTable        // nil = NewClassTable()
	Bus            *event.Bus         // nil = events dropped
	Log            *zap.Logger        // nil = no logging
	Temperature    float64
	RainRate       float64
	DefaultTerrain string // empty = first terrain def, if any
}

// Map owns every thing on it and all map-level indices: the thing grid,
// listers by def and class, tick lists, reservations, designations, the
// stockpile zone and terrain. Things reference the map; the map never hands
// out ownership.
type Map struct {
	Width, Height int

	defs     *data.Registry
	formulas scripting.Formulas
	classes  *ClassTable
	bus      *event.Bus
	log      *zap.Logger
	rng      *rand.Rand
	seed     int64

	ents    *ecs.World
	things  *ecs.Store[Thing]
	grid    [][]*Thing
	byDef   map[string][]*Thing
	byClass map[data.ThingClass][]*Thing
	terrain []*data.TerrainDef

	Ticks                *TickManager
	Reservations         *ReservationManager
	PhysicalInteractions *ReservationManager
	Designations         *DesignationManager
	Stockpile            *StockpileZone

	tick        int
	temperature float64
	rainRate    float64
	nextJobID   JobID
}

func NewMap(cfg Config) (*Map, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("map size %dx%d: %w", cfg.Width, cfg.Height, ErrOutOfBounds)
	}
	if cfg.Defs == nil {
		return nil, fmt.Errorf("map: no def registry")
	}
	if cfg.Formulas == nil {
		cfg.Formulas = scripting.GoFormulas{}
	}
	if cfg.Classes == nil {
		cfg.Classes = NewClassTable()
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	m := &Map{
		Width:        cfg.Width,
		Height:       cfg.Height,
		defs:         cfg.Defs,
		formulas:     cfg.Formulas,
		classes:      cfg.Classes,
		bus:          cfg.Bus,
		log:          cfg.Log,
		rng:          rand.New(rand.NewSource(cfg.Seed)),
		seed:         cfg.Seed,
		ents:         ecs.NewWorld(),
		things:       ecs.NewStore[Thing](),
		grid:         make([][]*Thing, cfg.Width*cfg.Height),
		byDef:        make(map[string][]*Thing),
		byClass:      make(map[data.ThingClass][]*Thing),
		terrain:      make([]*data.TerrainDef, cfg.Width*cfg.Height),
		Designations: &DesignationManager{},
		Stockpile:    newStockpileZone(),
		temperature:  cfg.Temperature,
		rainRate:     cfg.RainRate,
		nextJobID:    1,
	}
	m.ents.Registry().Register(m.things)
	m.Ticks = newTickManager(cfg.Log)
	m.Reservations = newReservationManager(m)
	m.PhysicalInteractions = newReservationManager(m)

	var fill *data.TerrainDef
	if cfg.DefaultTerrain != "" {
		if fill = cfg.Defs.Terrain(cfg.DefaultTerrain); fill == nil {
			return nil, fmt.Errorf("terrain %q: %w", cfg.DefaultTerrain, ErrUnknownDef)
		}
	}
	for i := range m.terrain {
		m.terrain[i] = fill
	}
	return m, nil
}

func (m *Map) Defs() *data.Registry         { return m.defs }
func (m *Map) Formulas() scripting.Formulas { return m.formulas }
func (m *Map) Bus() *event.Bus              { return m.bus }
func (m *Map) Log() *zap.Logger             { return m.log }
func (m *Map) Seed() int64                  { return m.seed }

// Rand is the map's deterministic random source. All simulation randomness
// must come from here so a seed replays identically.
func (m *Map) Rand() *rand.Rand { return m.rng }

// TicksGame returns the tick currently being simulated.
func (m *Map) TicksGame() int { return m.tick }

// NextJobID hands out a fresh job id.
func (m *Map) NextJobID() JobID {
	id := m.nextJobID
	m.nextJobID++
	return id
}

func (m *Map) InBounds(c Cell) bool {
	return c.X >= 0 && c.Z >= 0 && c.X < m.Width && c.Z < m.Height
}

func (m *Map) cellIndex(c Cell) int { return c.Z*m.Width + c.X }

// --- weather and terrain ---

func (m *Map) Temperature() float64     { return m.temperature }
func (m *Map) SetTemperature(t float64) { m.temperature = t }
func (m *Map) RainRate() float64        { return m.rainRate }
func (m *Map) SetRainRate(rate float64) { m.rainRate = rate }

// TemperatureAt returns the temperature things in c experience. Out of
// bounds cells get the outdoor temperature.
func (m *Map) TemperatureAt(c Cell) float64 {
	return m.temperature
}

// TerrainAt returns nil for out-of-bounds cells or cells with no terrain.
func (m *Map) TerrainAt(c Cell) *data.TerrainDef {
	if !m.InBounds(c) {
		return nil
	}
	return m.terrain[m.cellIndex(c)]
}

func (m *Map) SetTerrain(c Cell, name string) error {
	if !m.InBounds(c) {
		return fmt.Errorf("set terrain %v: %w", c, ErrOutOfBounds)
	}
	def := m.defs.Terrain(name)
	if def == nil {
		return fmt.Errorf("terrain %q: %w", name, ErrUnknownDef)
	}
	m.terrain[m.cellIndex(c)] = def
	return nil
}

// --- things ---

// MakeThing creates an unspawned thing of the named def.
func (m *Map) MakeThing(defName string) (*Thing, error) {
	def := m.defs.Thing(defName)
	if def == nil {
		return nil, fmt.Errorf("thing %q: %w", defName, ErrUnknownDef)
	}
	return m.newThing(def), nil
}

func (m *Map) newThing(def *data.ThingDef) *Thing {
	return m.buildThing(m.ents.CreateEntity(), def)
}

func (m *Map) buildThing(id ecs.EntityID, def *data.ThingDef) *Thing {
	t := &Thing{
		ID:         id,
		Def:        def,
		StackCount: 1,
		HitPoints:  def.MaxHitPoints,
		owner:      m,
		hashOffset: id.HashOffset(),
	}
	t.comps = buildComps(t)
	t.behaviour = m.classes.build(t)
	m.things.Set(id, t)
	return t
}

// SpawnNew makes a thing of the named def and spawns it at c.
func (m *Map) SpawnNew(defName string, c Cell) (*Thing, error) {
	t, err := m.MakeThing(defName)
	if err != nil {
		return nil, err
	}
	if err := m.Spawn(t, c, false); err != nil {
		m.Destroy(t, DestroyVanish)
		return nil, err
	}
	return t, nil
}

// Spawn places t at c and registers it with every map index exactly once.
// A thing that is already spawned is rejected and the indices are left
// untouched.
func (m *Map) Spawn(t *Thing, c Cell, respawningAfterLoad bool) error {
	switch {
	case t.owner != m:
		return fmt.Errorf("spawn %v: thing belongs to another map", t)
	case t.Destroyed():
		return fmt.Errorf("spawn %v: %w", t, ErrDestroyed)
	case t.Spawned():
		return fmt.Errorf("spawn %v: %w", t, ErrAlreadySpawned)
	case !m.InBounds(c):
		return fmt.Errorf("spawn %v at %v: %w", t, c, ErrOutOfBounds)
	}
	t.Position = c
	t.state = stateSpawned
	m.addToGrid(t)
	m.byDef[t.Def.Name] = append(m.byDef[t.Def.Name], t)
	m.byClass[t.Def.Class] = append(m.byClass[t.Def.Class], t)
	m.Ticks.Register(t)

	if h, ok := t.behaviour.(SpawnHook); ok {
		h.SpawnSetup(m, respawningAfterLoad)
	}
	event.Emit(m.bus, event.ThingSpawned{
		ThingID: t.ID,
		DefName: t.Def.Name,
		X:       c.X,
		Z:       c.Z,
		Reload:  respawningAfterLoad,
	})
	return nil
}

// DeSpawn removes t from every map index, drops reservations and
// designations targeting it, then runs its despawn hook with the map it
// left. Unspawned things are ignored.
func (m *Map) DeSpawn(t *Thing, mode DestroyMode) {
	if !t.Spawned() {
		return
	}
	m.removeFromGrid(t)
	m.byDef[t.Def.Name] = removeThing(m.byDef[t.Def.Name], t)
	m.byClass[t.Def.Class] = removeThing(m.byClass[t.Def.Class], t)
	m.Ticks.Deregister(t)
	target := ThingTarget(t)
	m.Reservations.ReleaseAllForTarget(target)
	m.PhysicalInteractions.ReleaseAllForTarget(target)
	m.Designations.RemoveAllOn(target)
	t.state = stateUnspawned

	if h, ok := t.behaviour.(DespawnHook); ok {
		h.DeSpawned(m, mode)
	}
}

// Destroy ends t's lifecycle. The handle stays resolvable, reporting
// Destroyed, until the cleanup phase recycles it.
func (m *Map) Destroy(t *Thing, mode DestroyMode) {
	if t.Destroyed() {
		m.log.Warn("thing destroyed twice", zap.Stringer("thing", t))
		return
	}
	if t.Spawned() {
		m.DeSpawn(t, mode)
	}
	t.state = stateDestroyed
	if h, ok := t.behaviour.(DestroyHook); ok {
		h.Destroyed(mode)
	}
	event.Emit(m.bus, event.ThingDestroyed{ThingID: t.ID, DefName: t.Def.Name, Mode: mode.String()})
	m.ents.MarkForDestruction(t.ID)
}

// FlushDestroyed recycles the handles of things destroyed since the last
// call. Called once per tick in the cleanup phase.
func (m *Map) FlushDestroyed() int {
	n := m.ents.Pending()
	m.ents.FlushDestroyQueue()
	return n
}

// Thing resolves a handle. Recycled or unknown handles return nil.
func (m *Map) Thing(id ecs.EntityID) *Thing {
	if id.IsZero() || !m.ents.Alive(id) {
		return nil
	}
	t, _ := m.things.Get(id)
	return t
}

// TargetThing resolves the thing of a target, or nil.
func (m *Map) TargetThing(target Target) *Thing {
	if !target.HasThing() {
		return nil
	}
	return m.Thing(target.Thing)
}

// TargetCell returns the cell a target points at: the position of a
// spawned thing target, or the cell of a cell target.
func (m *Map) TargetCell(target Target) (Cell, bool) {
	switch target.Kind {
	case TargetCell:
		return target.Cell, true
	case TargetThing:
		if t := m.Thing(target.Thing); t != nil && t.Spawned() {
			return t.Position, true
		}
	}
	return Cell{}, false
}

// AllThings returns every thing the map still holds, spawned or not, in a
// stable order.
func (m *Map) AllThings() []*Thing {
	return m.things.Values()
}

// ThingsAt returns the things in c in spawn order; empty for out of bounds.
func (m *Map) ThingsAt(c Cell) []*Thing {
	if !m.InBounds(c) {
		return nil
	}
	return append([]*Thing(nil), m.grid[m.cellIndex(c)]...)
}

// ThingsOfDef returns the spawned things of one def in spawn order.
func (m *Map) ThingsOfDef(name string) []*Thing {
	return append([]*Thing(nil), m.byDef[name]...)
}

// ThingsOfClass returns the spawned things of one class in spawn order.
func (m *Map) ThingsOfClass(class data.ThingClass) []*Thing {
	return append([]*Thing(nil), m.byClass[class]...)
}

// MoveThing relocates a spawned thing, keeping the grid in sync.
func (m *Map) MoveThing(t *Thing, c Cell) error {
	if !t.Spawned() {
		return fmt.Errorf("move %v: %w", t, ErrNotSpawned)
	}
	if !m.InBounds(c) {
		return fmt.Errorf("move %v to %v: %w", t, c, ErrOutOfBounds)
	}
	m.removeFromGrid(t)
	t.Position = c
	m.addToGrid(t)
	return nil
}

func (m *Map) addToGrid(t *Thing) {
	i := m.cellIndex(t.Position)
	if !containsThing(m.grid[i], t) {
		m.grid[i] = append(m.grid[i], t)
	}
}

func (m *Map) removeFromGrid(t *Thing) {
	i := m.cellIndex(t.Position)
	m.grid[i] = removeThing(m.grid[i], t)
}

// FirstOfClassAt returns the first spawned thing of class in c.
func (m *Map) FirstOfClassAt(c Cell, class data.ThingClass) *Thing {
	if !m.InBounds(c) {
		return nil
	}
	for _, t := range m.grid[m.cellIndex(c)] {
		if t.Def.Class == class {
			return t
		}
	}
	return nil
}

// FireAt returns the fire burning in c, or nil.
func (m *Map) FireAt(c Cell) *Thing {
	return m.FirstOfClassAt(c, data.ClassFire)
}

// DoorAt returns the door in c, or nil.
func (m *Map) DoorAt(c Cell) *Door {
	d, _ := BehaviourOf[*Door](m.FirstOfClassAt(c, data.ClassDoor))
	return d
}

// Impassable reports whether a pawn can never stand in c.
func (m *Map) Impassable(c Cell) bool {
	if !m.InBounds(c) {
		return true
	}
	if td := m.TerrainAt(c); td != nil && !td.Passable {
		return true
	}
	for _, t := range m.grid[m.cellIndex(c)] {
		if t.Def.Passability == data.Impassable {
			return true
		}
	}
	return false
}

// Standable reports whether a pawn may end a move in c.
func (m *Map) Standable(c Cell) bool {
	if m.Impassable(c) {
		return false
	}
	for _, t := range m.grid[m.cellIndex(c)] {
		if t.Def.Passability != data.Standable && t.Def.Class != data.ClassDoor {
			return false
		}
	}
	return true
}

// Tick advances every spawned thing by one simulation step.
func (m *Map) Tick(tick int) {
	m.tick = tick
	m.Ticks.doTick(tick)
}
