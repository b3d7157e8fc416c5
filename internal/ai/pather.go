package ai

import "github.com/woomy144/Rimworld/internal/world"

// PathEndMode says where relative to the destination a path ends.
type PathEndMode uint8

const (
	PathOnCell PathEndMode = iota
	PathTouch
	PathClosestTouch
	PathInteractionCell
)

const (
	moveCostCardinal = 12
	moveCostDiagonal = 17
)

// Pather walks the pawn toward a destination one cell at a time, stepping
// greedily in eight directions. It reports arrival or failure and leaves
// path search quality to a real planner.
type Pather struct {
	pawn *Pawn

	dest     world.Target
	mode     PathEndMode
	destCell world.Cell

	moving  bool
	arrived bool
	failed  bool

	nextCell       world.Cell
	ticksUntilMove int
}

func (pt *Pather) Moving() bool              { return pt.moving }
func (pt *Pather) Arrived() bool             { return pt.arrived }
func (pt *Pather) Failed() bool              { return pt.failed }
func (pt *Pather) Destination() world.Target { return pt.dest }

// StartPath begins moving toward dest. A pawn already at the destination
// arrives immediately. Walking to touch a thing claims it for physical
// interaction under the current job; the claim goes when the job ends or
// the pawn paths somewhere else.
func (pt *Pather) StartPath(dest world.Target, mode PathEndMode) {
	pt.dest, pt.mode = dest, mode
	pt.moving, pt.arrived, pt.failed = false, false, false
	if !pt.resolve() {
		pt.failed = true
		return
	}
	pt.claimPhysicalInteraction()
	if pt.atDestination() {
		pt.arrived = true
		return
	}
	pt.moving = true
	pt.setupNextCell()
}

// StopDead halts without arriving.
func (pt *Pather) StopDead() {
	pt.moving = false
	pt.arrived = false
}

func (pt *Pather) claimPhysicalInteraction() {
	m := pt.pawn.Map()
	m.PhysicalInteractions.ReleaseAllClaimedBy(pt.pawn.ID())
	job := pt.pawn.Jobs.CurJob()
	if job == nil || !pt.dest.HasThing() || (pt.mode != PathTouch && pt.mode != PathClosestTouch) {
		return
	}
	// Contention is left to FailOnSomeonePhysicallyInteracting.
	m.PhysicalInteractions.Reserve(pt.pawn.ID(), job.ID, pt.dest, 1, world.StackAll, world.LayerDefault)
}

func (pt *Pather) resolve() bool {
	m := pt.pawn.Map()
	if m == nil {
		return false
	}
	cell, ok := m.TargetCell(pt.dest)
	if !ok {
		return false
	}
	if pt.mode == PathInteractionCell {
		if b, ok := world.BehaviourOf[*world.Bench](m.TargetThing(pt.dest)); ok {
			cell = b.InteractionCell()
		}
	}
	pt.destCell = cell
	return true
}

func (pt *Pather) atDestination() bool {
	pos := pt.pawn.Position()
	switch pt.mode {
	case PathTouch, PathClosestTouch:
		return pos.AdjacentTo8WayOrInside(pt.destCell)
	}
	return pos == pt.destCell
}

func (pt *Pather) Tick() {
	if !pt.moving || pt.pawn.Stances.Busy() {
		return
	}
	if pt.dest.HasThing() {
		if !pt.resolve() {
			pt.fail()
			return
		}
		if pt.atDestination() {
			pt.moving, pt.arrived = false, true
			return
		}
	}
	pt.ticksUntilMove--
	if pt.ticksUntilMove > 0 {
		return
	}
	m := pt.pawn.Map()
	if !pt.canEnter(m, pt.nextCell) {
		pt.setupNextCell()
		return
	}
	if err := m.MoveThing(pt.pawn.thing, pt.nextCell); err != nil {
		pt.fail()
		return
	}
	if door := m.DoorAt(pt.nextCell); door != nil {
		door.CheckFriendlyTouched(pt.pawn.thing)
	}
	if pt.atDestination() {
		pt.moving, pt.arrived = false, true
		return
	}
	pt.setupNextCell()
}

func (pt *Pather) fail() {
	pt.moving, pt.arrived, pt.failed = false, false, true
}

func (pt *Pather) setupNextCell() {
	m := pt.pawn.Map()
	next, ok := pt.chooseStep(m)
	if !ok {
		pt.fail()
		return
	}
	cost := moveCostCardinal
	if next.X != pt.pawn.Position().X && next.Z != pt.pawn.Position().Z {
		cost = moveCostDiagonal
	}
	if door := m.DoorAt(next); door != nil {
		door.NotifyPawnApproaching(pt.pawn.thing, cost)
		if !door.Open() {
			door.StartManualOpenBy(pt.pawn.thing)
			pt.pawn.Stances.SetBusy(world.DoorOpenTicks)
		}
	}
	pt.nextCell = next
	pt.ticksUntilMove = cost
}

func (pt *Pather) canEnter(m *world.Map, c world.Cell) bool {
	if m.Impassable(c) {
		return false
	}
	if door := m.DoorAt(c); door != nil && door.BlocksPawn(pt.pawn.thing) {
		return false
	}
	return true
}

// chooseStep picks the neighbour that gets strictly closer to the
// destination, preferring the diagonal.
func (pt *Pather) chooseStep(m *world.Map) (world.Cell, bool) {
	pos := pt.pawn.Position()
	dx, dz := sign(pt.destCell.X-pos.X), sign(pt.destCell.Z-pos.Z)
	var steps []world.Cell
	switch {
	case dx != 0 && dz != 0:
		steps = []world.Cell{{X: dx, Z: dz}, {X: dx}, {Z: dz}}
	case dx != 0:
		steps = []world.Cell{{X: dx}, {X: dx, Z: 1}, {X: dx, Z: -1}}
	default:
		steps = []world.Cell{{Z: dz}, {X: 1, Z: dz}, {X: -1, Z: dz}}
	}
	cur := pos.DistanceSquared(pt.destCell)
	for _, s := range steps {
		c := pos.Add(s)
		if c.DistanceSquared(pt.destCell) >= cur || !pt.canEnter(m, c) {
			continue
		}
		if s.X != 0 && s.Z != 0 &&
			(m.Impassable(pos.Add(world.Cell{X: s.X})) || m.Impassable(pos.Add(world.Cell{Z: s.Z}))) {
			continue
		}
		return c, true
	}
	return world.Cell{}, false
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
