package ai

import "github.com/woomy144/Rimworld/internal/world"

// CompleteMode decides when a toil hands over to the next one.
type CompleteMode uint8

const (
	// CompleteInstant finishes right after the init action.
	CompleteInstant CompleteMode = iota
	// CompleteDelay finishes after DefaultDuration ticks.
	CompleteDelay
	// CompletePatherArrival finishes when the pawn's path arrives.
	CompletePatherArrival
	// CompleteFinishedBusy finishes when the pawn's busy stance ends.
	CompleteFinishedBusy
	// CompleteNever waits for a jump or an explicit ReadyForNextToil.
	CompleteNever
)

func (m CompleteMode) String() string {
	switch m {
	case CompleteDelay:
		return "delay"
	case CompletePatherArrival:
		return "pather_arrival"
	case CompleteFinishedBusy:
		return "finished_busy"
	case CompleteNever:
		return "never"
	}
	return "instant"
}

type jumpCondition struct {
	pred   func() bool
	target *Toil
}

// Toil is one step of a job. Its actions are closures over the driver
// that owns it; the toil has no state of its own beyond its wiring.
type Toil struct {
	Label string

	InitAction         func()
	TickAction         func()
	PreTickActions     []func()
	FinishActions      []func()
	CompleteMode       CompleteMode
	DefaultDuration    int
	AtomicWithPrevious bool

	endConditions  []func() JobCondition
	jumpConditions []jumpCondition
	driver         *JobDriver
}

// NewToil returns an instant toil with no actions.
func NewToil(label string) *Toil {
	return &Toil{Label: label}
}

func (t *Toil) AddEndCondition(cond func() JobCondition) {
	t.endConditions = append(t.endConditions, cond)
}

func (t *Toil) AddJumpCondition(pred func() bool, target *Toil) {
	t.jumpConditions = append(t.jumpConditions, jumpCondition{pred: pred, target: target})
}

func (t *Toil) AddPreTickAction(fn func()) {
	t.PreTickActions = append(t.PreTickActions, fn)
}

func (t *Toil) AddFinishAction(fn func()) {
	t.FinishActions = append(t.FinishActions, fn)
}

// Driver returns the driver running the toil; nil until the toil list is
// materialized.
func (t *Toil) Driver() *JobDriver { return t.driver }

func (t *Toil) jobDriver() *JobDriver { return t.driver }

func (t *Toil) String() string {
	if t.Label != "" {
		return t.Label
	}
	return "toil"
}

// Endable is anything end and jump conditions can be attached to: a
// driver (checked on every toil) or a single toil.
type Endable interface {
	AddEndCondition(cond func() JobCondition)
	AddJumpCondition(pred func() bool, target *Toil)
	AddFinishAction(fn func())
	jobDriver() *JobDriver
}

// FailOn ends the job Incompletable when cond holds.
func FailOn[T Endable](f T, cond func() bool) T {
	f.AddEndCondition(func() JobCondition {
		if cond() {
			return CondIncompletable
		}
		return CondOngoing
	})
	return f
}

// FailOnDestroyedOrNull fails when the target thing is gone or destroyed.
func FailOnDestroyedOrNull[T Endable](f T, ind TargetIndex) T {
	return FailOn(f, func() bool {
		th := f.jobDriver().TargetThing(ind)
		return th == nil || th.Destroyed()
	})
}

// FailOnDespawnedOrNull fails when the target thing left the map.
func FailOnDespawnedOrNull[T Endable](f T, ind TargetIndex) T {
	return FailOn(f, func() bool {
		return !f.jobDriver().targetSpawnedOrCell(ind)
	})
}

// FailOnForbidden fails when the target thing became forbidden, unless the
// job ignores forbidden things.
func FailOnForbidden[T Endable](f T, ind TargetIndex) T {
	return FailOn(f, func() bool {
		d := f.jobDriver()
		if d.Job.IgnoreForbidden {
			return false
		}
		th := d.TargetThing(ind)
		return th != nil && th.IsForbidden()
	})
}

func FailOnDespawnedNullOrForbidden[T Endable](f T, ind TargetIndex) T {
	FailOnDespawnedOrNull(f, ind)
	return FailOnForbidden(f, ind)
}

// FailOnSomeonePhysicallyInteracting fails when another pawn holds a
// physical interaction claim on the target.
func FailOnSomeonePhysicallyInteracting[T Endable](f T, ind TargetIndex) T {
	return FailOn(f, func() bool {
		d := f.jobDriver()
		target := d.Job.Target(ind)
		return d.Map().PhysicalInteractions.IsReservedByOther(d.Pawn.ID(), target)
	})
}

// FailOnThingMissingDesignation fails when the target lost the designation
// that justified the job.
func FailOnThingMissingDesignation[T Endable](f T, ind TargetIndex, kind world.DesignationKind) T {
	return FailOn(f, func() bool {
		d := f.jobDriver()
		if d.Job.IgnoreDesignations {
			return false
		}
		return !d.Map().Designations.Has(kind, d.Job.Target(ind))
	})
}

// FailOnBurningImmobile fails when the target cell or thing is on fire.
func FailOnBurningImmobile[T Endable](f T, ind TargetIndex) T {
	return FailOn(f, func() bool {
		d := f.jobDriver()
		c, ok := d.Map().TargetCell(d.Job.Target(ind))
		return ok && d.Map().FireAt(c) != nil
	})
}

// EndOnDespawnedOrNull ends the job with cond when the target thing left
// the map.
func EndOnDespawnedOrNull[T Endable](f T, ind TargetIndex, cond JobCondition) T {
	f.AddEndCondition(func() JobCondition {
		if !f.jobDriver().targetSpawnedOrCell(ind) {
			return cond
		}
		return CondOngoing
	})
	return f
}

// EndOnNoTargetInQueue ends the job with cond once the queue is empty.
func EndOnNoTargetInQueue[T Endable](f T, ind TargetIndex, cond JobCondition) T {
	f.AddEndCondition(func() JobCondition {
		if f.jobDriver().Job.QueueLen(ind) == 0 {
			return cond
		}
		return CondOngoing
	})
	return f
}

// JumpIf redirects the driver to target whenever pred holds.
func JumpIf[T Endable](f T, pred func() bool, target *Toil) T {
	f.AddJumpCondition(pred, target)
	return f
}

// JumpIfDespawnedOrNull jumps when the target thing left the map.
func JumpIfDespawnedOrNull[T Endable](f T, ind TargetIndex, target *Toil) T {
	return JumpIf(f, func() bool {
		return !f.jobDriver().targetSpawnedOrCell(ind)
	}, target)
}
