package ai

import "github.com/woomy144/Rimworld/internal/world"

// Wait holds the pawn in place for ticks ticks.
func Wait(ticks int) *Toil {
	toil := NewToil("wait")
	toil.InitAction = func() { toil.Driver().Pawn.Pather.StopDead() }
	toil.CompleteMode = CompleteDelay
	toil.DefaultDuration = ticks
	return toil
}

// Do runs fn once and moves on.
func Do(label string, fn func()) *Toil {
	toil := NewToil(label)
	toil.InitAction = fn
	return toil
}

// Label is a no-op jump target.
func Label(name string) *Toil {
	return NewToil(name)
}

func ClearTarget(ind TargetIndex) *Toil {
	toil := NewToil("clear_target")
	toil.InitAction = func() {
		toil.Driver().Job.SetTarget(ind, world.Target{})
	}
	return toil
}
