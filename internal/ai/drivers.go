package ai

import (
	"github.com/woomy144/Rimworld/internal/data"
	"github.com/woomy144/Rimworld/internal/world"
)

const (
	waitCheckInterval = 4
	waitCombatDefName = "Wait_Combat"
)

// gotoDriver walks to TargetA, holding the destination cell.
type gotoDriver struct{}

func (gotoDriver) TryMakePreToilReservations(d *JobDriver, errorOnFailed bool) bool {
	target := d.Job.TargetA
	if target.Kind != world.TargetCell {
		return true
	}
	return d.Reserve(target, 1, world.StackAll, errorOnFailed)
}

func (gotoDriver) MakeNewToils(d *JobDriver) []*Toil {
	return []*Toil{GotoCell(TargetA, PathOnCell)}
}

// waitDriver stands still until the job expires or is interrupted. Every
// few ticks it looks for an adjacent fire to beat out; the combat variant
// also attacks adjacent hostiles.
type waitDriver struct{}

func (waitDriver) TryMakePreToilReservations(d *JobDriver, errorOnFailed bool) bool { return true }

func (w waitDriver) MakeNewToils(d *JobDriver) []*Toil {
	toil := NewToil("wait")
	toil.InitAction = func() { d.Pawn.Pather.StopDead() }
	toil.TickAction = func() {
		if d.Pawn.thing.IsHashIntervalTick(waitCheckInterval) {
			w.checkSurroundings(d)
		}
	}
	toil.CompleteMode = CompleteNever
	return []*Toil{toil}
}

func (waitDriver) checkSurroundings(d *JobDriver) {
	m := d.Map()
	pos := d.Pawn.Position()
	if d.Job.Def.Name == waitCombatDefName {
		for _, c := range aroundAndInside(pos) {
			for _, th := range m.ThingsAt(c) {
				if th.Def.Class != data.ClassPawn || !d.Pawn.HostileTo(th) {
					continue
				}
				if def := m.Defs().Job("AttackStatic"); def != nil {
					d.Pawn.Jobs.StartJob(NewJob(def, world.ThingTarget(th)), CondInterruptOptional, false)
					return
				}
			}
		}
	}
	for _, c := range aroundAndInside(pos) {
		fire := m.FireAt(c)
		if fire == nil {
			continue
		}
		if def := m.Defs().Job("BeatFire"); def != nil {
			d.Pawn.Jobs.StartJob(NewJob(def, world.ThingTarget(fire)), CondInterruptOptional, true)
			return
		}
	}
}

// aroundAndInside lists c and its eight neighbours.
func aroundAndInside(c world.Cell) []world.Cell {
	out := make([]world.Cell, 0, 9)
	out = append(out, c)
	for _, off := range world.Adjacent8 {
		out = append(out, c.Add(off))
	}
	return out
}

// equipDriver picks up the weapon in TargetA as the primary.
type equipDriver struct{}

func (equipDriver) TryMakePreToilReservations(d *JobDriver, errorOnFailed bool) bool {
	return d.Reserve(d.Job.TargetA, 1, world.StackAll, errorOnFailed)
}

func (equipDriver) MakeNewToils(d *JobDriver) []*Toil {
	FailOnDespawnedNullOrForbidden(d, TargetA)
	return []*Toil{
		GotoThing(TargetA, PathClosestTouch),
		Do("equip", func() {
			if !d.Pawn.Equipment.Equip(d.TargetThing(TargetA)) {
				d.EndJobWith(CondIncompletable)
			}
		}),
	}
}
