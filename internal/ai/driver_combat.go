package ai

import (
	"encoding/json"

	"github.com/woomy144/Rimworld/internal/world"
)

const (
	beatFireDamage   = 32
	beatFireCooldown = 60
)

// beatFireDriver smothers the fire in TargetA. The job succeeds when the
// fire is gone, whoever put it out.
type beatFireDriver struct{}

func (beatFireDriver) TryMakePreToilReservations(d *JobDriver, errorOnFailed bool) bool { return true }

func (beatFireDriver) MakeNewToils(d *JobDriver) []*Toil {
	EndOnDespawnedOrNull(d, TargetA, CondSucceeded)

	approach := GotoThing(TargetA, PathTouch)
	beat := NewToil("beat_fire")
	beat.TickAction = func() {
		if d.Pawn.Stances.Busy() {
			return
		}
		fire := d.TargetThing(TargetA)
		if fire == nil || !fire.Spawned() {
			return
		}
		if !d.Pawn.Position().AdjacentTo8WayOrInside(fire.Position) {
			d.JumpToToil(approach)
			return
		}
		fire.TakeDamage(world.Damage{Kind: world.DamageExtinguish, Amount: beatFireDamage, Instigator: d.Pawn.ID()})
		d.Pawn.Stances.SetBusy(beatFireCooldown)
	}
	beat.CompleteMode = CompleteNever
	return []*Toil{approach, beat}
}

// attackStaticDriver attacks TargetA without moving. It succeeds when the
// target is gone or the job's attack budget is spent, and fails when the
// target walks out of range.
type attackStaticDriver struct {
	numAttacksMade int
}

func (a *attackStaticDriver) TryMakePreToilReservations(d *JobDriver, errorOnFailed bool) bool {
	return true
}

func (a *attackStaticDriver) MakeNewToils(d *JobDriver) []*Toil {
	attack := NewToil("attack_static")
	attack.InitAction = func() { d.Pawn.Pather.StopDead() }
	attack.TickAction = func() {
		th := d.TargetThing(TargetA)
		if th == nil || !th.Spawned() {
			d.EndJobWith(CondSucceeded)
			return
		}
		if limit := d.Job.MaxNumStaticAttacks; limit > 0 && a.numAttacksMade >= limit {
			d.EndJobWith(CondSucceeded)
			return
		}
		if d.Pawn.Stances.Busy() {
			return
		}
		verb := jobVerb(d)
		if !verb.CanHitFrom(d.Pawn.Position(), th.Position) {
			d.EndJobWith(CondIncompletable)
			return
		}
		if verb.TryStartCastOn(d.Pawn, world.ThingTarget(th)) {
			a.numAttacksMade++
		}
	}
	attack.CompleteMode = CompleteNever
	return []*Toil{attack}
}

type attackStaticState struct {
	NumAttacksMade int `json:"num_attacks_made"`
}

func (a *attackStaticDriver) SaveState() (json.RawMessage, error) {
	return json.Marshal(attackStaticState{NumAttacksMade: a.numAttacksMade})
}

func (a *attackStaticDriver) LoadState(raw json.RawMessage) error {
	var s attackStaticState
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	a.numAttacksMade = s.NumAttacksMade
	return nil
}

// killDriver chases TargetA and attacks until it is gone.
type killDriver struct{}

func (killDriver) TryMakePreToilReservations(d *JobDriver, errorOnFailed bool) bool { return true }

func (killDriver) MakeNewToils(d *JobDriver) []*Toil {
	EndOnDespawnedOrNull(d, TargetA, CondSucceeded)

	gotoCast := GotoCastPosition(TargetA)
	return []*Toil{
		gotoCast,
		CastVerb(TargetA),
		JumpIfToil(func() bool { return d.targetSpawnedOrCell(TargetA) }, gotoCast),
	}
}
