package ai

import "github.com/woomy144/Rimworld/internal/world"

// Reserve claims the target in ind for the job, ending it Incompletable
// when someone else holds it.
func Reserve(ind TargetIndex, maxClaimants, stackCount int) *Toil {
	toil := NewToil("reserve")
	toil.InitAction = func() {
		d := toil.Driver()
		if !d.Reserve(d.Job.Target(ind), maxClaimants, stackCount, true) {
			d.EndJobWith(CondIncompletable)
		}
	}
	toil.AtomicWithPrevious = true
	return toil
}

// ReserveQueue claims every target waiting in the queue of ind, with the
// matching count from the count queue when there is one.
func ReserveQueue(ind TargetIndex, maxClaimants int) *Toil {
	toil := NewToil("reserve_queue")
	toil.InitAction = func() {
		d := toil.Driver()
		q := d.Job.TargetQueue(ind)
		if q == nil {
			return
		}
		for i, target := range *q {
			count := world.StackAll
			if i < len(d.Job.CountQueue) {
				count = d.Job.CountQueue[i]
			}
			if !d.Reserve(target, maxClaimants, count, true) {
				d.EndJobWith(CondIncompletable)
				return
			}
		}
	}
	toil.AtomicWithPrevious = true
	return toil
}

// Release drops the job's claim on the target in ind.
func Release(ind TargetIndex) *Toil {
	toil := NewToil("release")
	toil.InitAction = func() {
		d := toil.Driver()
		d.Map().Reservations.Release(d.Job.Target(ind), d.Pawn.ID(), d.Job.ID)
	}
	toil.AtomicWithPrevious = true
	return toil
}

// JumpToil moves the cursor to target as soon as it starts.
func JumpToil(target *Toil) *Toil {
	toil := NewToil("jump")
	toil.InitAction = func() {
		toil.Driver().JumpToToil(target)
	}
	return toil
}

// JumpIfToil jumps to target when cond holds and otherwise falls through.
func JumpIfToil(cond func() bool, target *Toil) *Toil {
	toil := NewToil("jump_if")
	toil.InitAction = func() {
		if cond() {
			toil.Driver().JumpToToil(target)
		}
	}
	return toil
}

// JumpIfHaveTargetInQueue loops back to target while the queue of ind
// still holds targets.
func JumpIfHaveTargetInQueue(ind TargetIndex, target *Toil) *Toil {
	toil := NewToil("jump_if_queue")
	toil.InitAction = func() {
		d := toil.Driver()
		if d.Job.QueueLen(ind) > 0 {
			d.JumpToToil(target)
		}
	}
	return toil
}

func JumpIfTargetInvalid(ind TargetIndex, target *Toil) *Toil {
	toil := NewToil("jump_if_invalid")
	toil.InitAction = func() {
		d := toil.Driver()
		if !d.Job.Target(ind).IsValid() {
			d.JumpToToil(target)
		}
	}
	return toil
}

func JumpIfTargetDespawnedOrNull(ind TargetIndex, target *Toil) *Toil {
	toil := NewToil("jump_if_despawned")
	toil.InitAction = func() {
		d := toil.Driver()
		if !d.targetSpawnedOrCell(ind) {
			d.JumpToToil(target)
		}
	}
	return toil
}

// ExtractNextTargetFromQueue pops the head of the queue of ind into the
// target itself, and the head of the count queue into the job count.
func ExtractNextTargetFromQueue(ind TargetIndex) *Toil {
	toil := NewToil("extract_next")
	toil.InitAction = func() {
		job := toil.Driver().Job
		q := job.TargetQueue(ind)
		if q == nil || len(*q) == 0 {
			return
		}
		job.SetTarget(ind, (*q)[0])
		*q = (*q)[1:]
		if len(job.CountQueue) > 0 {
			job.Count = job.CountQueue[0]
			job.CountQueue = job.CountQueue[1:]
		}
	}
	return toil
}
