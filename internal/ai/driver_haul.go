package ai

import "github.com/woomy144/Rimworld/internal/world"

// haulToCellDriver carries the thing in TargetA to the storage cell in
// TargetB.
type haulToCellDriver struct{}

func (haulToCellDriver) TryMakePreToilReservations(d *JobDriver, errorOnFailed bool) bool {
	return d.Reserve(d.Job.TargetA, 1, d.Job.Count, errorOnFailed) &&
		d.Reserve(d.Job.TargetB, 1, world.StackAll, errorOnFailed)
}

func (haulToCellDriver) MakeNewToils(d *JobDriver) []*Toil {
	FailOnBurningImmobile(d, TargetB)
	d.AddFinishAction(func() { dropCarriedOnEnd(d) })

	gotoThing := GotoThing(TargetA, PathClosestTouch)
	FailOnDespawnedNullOrForbidden(gotoThing, TargetA)
	FailOnSomeonePhysicallyInteracting(gotoThing, TargetA)
	carry := CarryHauledThingToCell(TargetB)
	return []*Toil{
		gotoThing,
		StartCarryThing(TargetA),
		carry,
		PlaceHauledThingInCell(TargetB, carry, nil),
	}
}

// dropCarriedOnEnd puts down whatever the pawn still holds when a hauling
// job ends early.
func dropCarriedOnEnd(d *JobDriver) {
	if d.Pawn.Carry.Carried == nil || d.Map() == nil {
		return
	}
	if _, ok := d.Pawn.Carry.TryDropCarried(d.Pawn.Position()); !ok {
		d.Pawn.Carry.DestroyCarried()
	}
}
