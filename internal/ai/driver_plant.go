package ai

import (
	"encoding/json"

	"github.com/woomy144/Rimworld/internal/world"
)

// plantCutWork is the work a pawn spends on one plant.
const plantCutWork = 150

// cutPlantDriver cuts the designated plant in TargetA, spawning its yield.
type cutPlantDriver struct {
	workDone int
}

func (c *cutPlantDriver) TryMakePreToilReservations(d *JobDriver, errorOnFailed bool) bool {
	return d.Reserve(d.Job.TargetA, 1, world.StackAll, errorOnFailed)
}

func (c *cutPlantDriver) MakeNewToils(d *JobDriver) []*Toil {
	FailOnDespawnedNullOrForbidden(d, TargetA)
	FailOnThingMissingDesignation(d, TargetA, world.DesignateCutPlant)

	cut := NewToil("cut_plant")
	cut.InitAction = func() {
		c.workDone = 0
		d.Pawn.Pather.StopDead()
	}
	cut.TickAction = func() {
		c.workDone++
		if c.workDone < plantCutWork {
			return
		}
		th := d.TargetThing(TargetA)
		plant, ok := world.BehaviourOf[*world.Plant](th)
		if !ok {
			d.EndJobWith(CondIncompletable)
			return
		}
		d.Map().Designations.Remove(world.DesignateCutPlant, world.ThingTarget(th))
		plant.PlantCollected()
		d.ReadyForNextToil()
	}
	cut.CompleteMode = CompleteNever
	return []*Toil{GotoThing(TargetA, PathTouch), cut}
}

type cutPlantState struct {
	WorkDone int `json:"work_done"`
}

func (c *cutPlantDriver) SaveState() (json.RawMessage, error) {
	return json.Marshal(cutPlantState{WorkDone: c.workDone})
}

func (c *cutPlantDriver) LoadState(raw json.RawMessage) error {
	var s cutPlantState
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	c.workDone = s.WorkDone
	return nil
}
