package ai

import (
	"encoding/json"

	"github.com/woomy144/Rimworld/internal/core/ecs"
	"github.com/woomy144/Rimworld/internal/world"
)

// doBillDriver works one iteration of the bill on the bench in TargetA.
// The ingredients wait in TargetQueueB with their counts in CountQueue;
// each one is carried to a cell next to the bench (TargetC) before the
// work starts. The finished product is carried to storage through TargetB.
type doBillDriver struct {
	workLeft float64
	placed   []placedIngredient
}

type placedIngredient struct {
	Thing ecs.EntityID `json:"thing"`
	Count int          `json:"count"`
}

func (b *doBillDriver) TryMakePreToilReservations(d *JobDriver, errorOnFailed bool) bool {
	if !d.Reserve(d.Job.TargetA, 1, world.StackAll, errorOnFailed) {
		return false
	}
	for i, target := range d.Job.TargetQueueB {
		count := world.StackAll
		if i < len(d.Job.CountQueue) {
			count = d.Job.CountQueue[i]
		}
		if !d.Reserve(target, 1, count, errorOnFailed) {
			return false
		}
	}
	return true
}

func (b *doBillDriver) MakeNewToils(d *JobDriver) []*Toil {
	FailOnDespawnedNullOrForbidden(d, TargetA)
	FailOnBurningImmobile(d, TargetA)
	FailOn(d, func() bool { return d.Job.Bill == nil || d.Job.Bill.DeletedOrDereferenced() })
	d.AddFinishAction(func() { dropCarriedOnEnd(d) })

	gotoBillGiver := GotoThing(TargetA, PathInteractionCell)
	gotoBillGiver.Label = "goto_bill_giver"

	extract := ExtractNextTargetFromQueue(TargetB)
	gotoIngredient := GotoThing(TargetB, PathClosestTouch)
	FailOnDespawnedNullOrForbidden(gotoIngredient, TargetB)
	FailOnSomeonePhysicallyInteracting(gotoIngredient, TargetB)

	carryProduct := CarryHauledThingToCell(TargetB)

	return []*Toil{
		JumpIfToil(func() bool { return d.Job.QueueLen(TargetB) == 0 }, gotoBillGiver),
		extract,
		gotoIngredient,
		StartCarryThing(TargetB),
		GotoThing(TargetA, PathInteractionCell),
		Do("find_place_cell", func() { b.choosePlaceCell(d) }),
		PlaceHauledThingInCell(TargetC, nil, func(t *world.Thing, count int) {
			b.recordPlaced(t, count)
			d.Reserve(world.ThingTarget(t), 1, world.StackAll, false)
		}),
		JumpIfHaveTargetInQueue(TargetB, extract),
		gotoBillGiver,
		DoRecipeWork(),
		FinishRecipeAndStartStoringProduct(),
		carryProduct,
		PlaceHauledThingInCell(TargetB, carryProduct, nil),
	}
}

// choosePlaceCell points TargetC at the first ingredient cell of the bench
// that can take what the pawn carries.
func (b *doBillDriver) choosePlaceCell(d *JobDriver) {
	bench, ok := world.BehaviourOf[*world.Bench](d.TargetThing(TargetA))
	carried := d.Pawn.Carry.Carried
	if !ok || carried == nil {
		d.EndJobWith(CondIncompletable)
		return
	}
	for _, c := range bench.IngredientStackCells() {
		if d.Map().CanPlaceItemAt(c, carried) {
			d.Job.SetTarget(TargetC, world.CellTarget(c))
			return
		}
	}
	d.EndJobWith(CondIncompletable)
}

func (b *doBillDriver) recordPlaced(t *world.Thing, count int) {
	for i := range b.placed {
		if b.placed[i].Thing == t.ID {
			b.placed[i].Count += count
			return
		}
	}
	b.placed = append(b.placed, placedIngredient{Thing: t.ID, Count: count})
}

// consumeIngredients destroys the placed units. Stacks that shrank since
// they were placed give up what is left.
func (b *doBillDriver) consumeIngredients(m *world.Map) {
	for _, p := range b.placed {
		th := m.Thing(p.Thing)
		if th == nil || th.Destroyed() {
			continue
		}
		if p.Count >= th.StackCount {
			th.Destroy(world.DestroyVanish)
			continue
		}
		th.SplitOff(p.Count).Destroy(world.DestroyVanish)
	}
	b.placed = nil
}

// Placed lists the ingredient stacks put down so far and their counts.
func (b *doBillDriver) Placed() []placedIngredient {
	return append([]placedIngredient(nil), b.placed...)
}

type doBillState struct {
	WorkLeft float64            `json:"work_left"`
	Placed   []placedIngredient `json:"placed,omitempty"`
}

func (b *doBillDriver) SaveState() (json.RawMessage, error) {
	return json.Marshal(doBillState{WorkLeft: b.workLeft, Placed: b.placed})
}

func (b *doBillDriver) LoadState(raw json.RawMessage) error {
	var s doBillState
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	b.workLeft, b.placed = s.WorkLeft, s.Placed
	return nil
}
