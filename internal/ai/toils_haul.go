package ai

import (
	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/world"
)

// StartCarryThing picks up the thing in ind, Job.Count units or the whole
// stack when the count is unset. The target is pointed at what is now in
// hand.
func StartCarryThing(ind TargetIndex) *Toil {
	toil := NewToil("start_carry")
	toil.InitAction = func() {
		d := toil.Driver()
		th := d.TargetThing(ind)
		if th == nil || !th.Spawned() {
			d.EndJobWith(CondIncompletable)
			return
		}
		if d.Pawn.Carry.TryStartCarry(th, d.Job.Count) == 0 {
			d.Map().Log().Debug("could not pick up",
				zap.Stringer("pawn", d.Pawn.thing),
				zap.Stringer("thing", th),
			)
			d.EndJobWith(CondIncompletable)
			return
		}
		d.Job.SetTarget(ind, world.ThingTarget(d.Pawn.Carry.Carried))
	}
	return toil
}

// CarryHauledThingToCell walks the carried thing to the cell in ind.
func CarryHauledThingToCell(ind TargetIndex) *Toil {
	toil := GotoCell(ind, PathOnCell)
	toil.Label = "carry_to_cell"
	FailOn(toil, func() bool { return toil.Driver().Pawn.Carry.Carried == nil })
	return toil
}

// PlaceHauledThingInCell puts the carried thing down in the cell of ind.
// When the cell cannot take it, a storage haul retargets the next storage
// cell and jumps to nextToilOnFail; otherwise the thing is dropped nearby
// and the job ends Incompletable. onPlaced, if set, sees the stack that
// received the units.
func PlaceHauledThingInCell(ind TargetIndex, nextToilOnFail *Toil, onPlaced func(*world.Thing, int)) *Toil {
	toil := NewToil("place_hauled")
	toil.InitAction = func() {
		d := toil.Driver()
		m := d.Map()
		carried := d.Pawn.Carry.Carried
		if carried == nil {
			d.EndJobWith(CondIncompletable)
			return
		}
		count := carried.StackCount
		cell, ok := m.TargetCell(d.Job.Target(ind))
		if !ok {
			cell = d.Pawn.Position()
		}
		if placed, ok := d.Pawn.Carry.TryPlaceCarriedAt(cell); ok {
			if onPlaced != nil {
				onPlaced(placed, count)
			}
			return
		}
		if left := d.Pawn.Carry.Carried; left != nil && onPlaced != nil && left.StackCount < count {
			if first := m.FirstOfClassAt(cell, left.Def.Class); first != nil {
				onPlaced(first, count-left.StackCount)
			}
		}
		if d.Job.HaulMode == HaulToCellStorage && nextToilOnFail != nil {
			if next, found := m.ClosestStorageCellFor(d.Pawn.Carry.Carried, d.Pawn.Position(), d.Pawn.Target()); found &&
				d.Reserve(world.CellTarget(next), 1, world.StackAll, false) {
				d.Job.SetTarget(ind, world.CellTarget(next))
				d.JumpToToil(nextToilOnFail)
				return
			}
		}
		d.Pawn.Carry.TryDropCarried(d.Pawn.Position())
		d.EndJobWith(CondIncompletable)
	}
	return toil
}
