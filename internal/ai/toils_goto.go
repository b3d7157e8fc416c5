package ai

import "github.com/woomy144/Rimworld/internal/world"

// GotoThing walks to the thing in ind and fails if it leaves the map.
func GotoThing(ind TargetIndex, mode PathEndMode) *Toil {
	toil := NewToil("goto_thing")
	toil.InitAction = func() {
		d := toil.Driver()
		d.Pawn.Pather.StartPath(d.Job.Target(ind), mode)
	}
	toil.CompleteMode = CompletePatherArrival
	FailOnDespawnedOrNull(toil, ind)
	return toil
}

// GotoCell walks to the cell (or the cell of the thing) in ind.
func GotoCell(ind TargetIndex, mode PathEndMode) *Toil {
	toil := NewToil("goto_cell")
	toil.InitAction = func() {
		d := toil.Driver()
		target := d.Job.Target(ind)
		if c, ok := d.Map().TargetCell(target); ok {
			target = world.CellTarget(c)
		}
		d.Pawn.Pather.StartPath(target, mode)
	}
	toil.CompleteMode = CompletePatherArrival
	return toil
}
