package ai

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/world"
)

// maxToilsPerTick bounds how many toils may start within one driver tick.
// A chain of instant toils that loops on itself ends the job Errored.
const maxToilsPerTick = 200

// Driver is the job-kind specific part of a job driver.
type Driver interface {
	// TryMakePreToilReservations claims everything the toils will need.
	// Returning false keeps the job from starting.
	TryMakePreToilReservations(d *JobDriver, errorOnFailed bool) bool
	// MakeNewToils builds the full toil list. It must only wire closures;
	// targets are read from the job when the toils run.
	MakeNewToils(d *JobDriver) []*Toil
}

// DriverSaver is implemented by drivers with counters worth keeping.
type DriverSaver interface {
	SaveState() (json.RawMessage, error)
	LoadState(raw json.RawMessage) error
}

// DriverFactory makes an empty driver for one job.
type DriverFactory func() Driver

// DriverTable maps JobDef.Driver names to driver factories. It is built
// once and shared by every pawn of a map.
type DriverTable struct {
	factories map[string]DriverFactory
}

// NewDriverTable returns a table with the built-in drivers registered.
func NewDriverTable() *DriverTable {
	dt := &DriverTable{factories: make(map[string]DriverFactory)}
	dt.Register("Goto", func() Driver { return &gotoDriver{} })
	dt.Register("Wait", func() Driver { return &waitDriver{} })
	dt.Register("HaulToCell", func() Driver { return &haulToCellDriver{} })
	dt.Register("DoBill", func() Driver { return &doBillDriver{} })
	dt.Register("Equip", func() Driver { return &equipDriver{} })
	dt.Register("CutPlant", func() Driver { return &cutPlantDriver{} })
	dt.Register("BeatFire", func() Driver { return &beatFireDriver{} })
	dt.Register("AttackStatic", func() Driver { return &attackStaticDriver{} })
	dt.Register("Kill", func() Driver { return &killDriver{} })
	return dt
}

func (dt *DriverTable) Register(name string, f DriverFactory) {
	dt.factories[name] = f
}

func (dt *DriverTable) make(name string) (Driver, error) {
	f, ok := dt.factories[name]
	if !ok {
		return nil, fmt.Errorf("no job driver %q", name)
	}
	return f(), nil
}

// JobDriver runs one job: it owns the toil list, the cursor into it and
// the end and jump conditions that apply to every toil.
type JobDriver struct {
	Job  *Job
	Pawn *Pawn

	TicksLeftThisToil int
	StartTick         int

	impl           Driver
	toils          []*Toil
	curToilIndex   int
	toilFinished   bool
	ended          bool
	gen            int // bumped whenever a toil starts
	toilsThisTick  int
	pendingEnd     JobCondition
	endConditions  []func() JobCondition
	jumpConditions []jumpCondition
	finishActions  []func()
}

func newJobDriver(p *Pawn, job *Job, impl Driver) *JobDriver {
	return &JobDriver{Job: job, Pawn: p, impl: impl, curToilIndex: -1}
}

func (d *JobDriver) Map() *world.Map { return d.Pawn.Map() }

// Impl returns the job-kind specific driver.
func (d *JobDriver) Impl() Driver { return d.impl }

func (d *JobDriver) Ended() bool { return d.ended }

func (d *JobDriver) CurToilIndex() int { return d.curToilIndex }

// CurToil returns the active toil, or nil before the first toil starts.
func (d *JobDriver) CurToil() *Toil {
	if d.curToilIndex < 0 || d.curToilIndex >= len(d.toils) {
		return nil
	}
	return d.toils[d.curToilIndex]
}

func (d *JobDriver) Toils() []*Toil { return d.toils }

func (d *JobDriver) AddEndCondition(cond func() JobCondition) {
	d.endConditions = append(d.endConditions, cond)
}

func (d *JobDriver) AddJumpCondition(pred func() bool, target *Toil) {
	d.jumpConditions = append(d.jumpConditions, jumpCondition{pred: pred, target: target})
}

// AddFinishAction registers cleanup that runs once when the job ends.
func (d *JobDriver) AddFinishAction(fn func()) {
	d.finishActions = append(d.finishActions, fn)
}

func (d *JobDriver) jobDriver() *JobDriver { return d }

// TargetThing resolves a job target to its thing, or nil.
func (d *JobDriver) TargetThing(ind TargetIndex) *world.Thing {
	return d.Map().TargetThing(d.Job.Target(ind))
}

// targetSpawnedOrCell reports whether the target is a valid cell or a
// spawned thing.
func (d *JobDriver) targetSpawnedOrCell(ind TargetIndex) bool {
	target := d.Job.Target(ind)
	switch target.Kind {
	case world.TargetCell:
		return true
	case world.TargetThing:
		th := d.Map().TargetThing(target)
		return th != nil && th.Spawned()
	}
	return false
}

// Report is the human-readable line for the pawn's current activity.
func (d *JobDriver) Report() string {
	s := d.Job.Def.ReportString
	if s == "" {
		s = d.Job.Def.Name
	}
	return s
}

// setup materializes the toils. Reservations are made by the tracker.
func (d *JobDriver) setup() {
	d.toils = d.impl.MakeNewToils(d)
	for _, t := range d.toils {
		t.driver = d
	}
}

// TryMakePreToilReservations asks the driver kind to claim its targets.
func (d *JobDriver) TryMakePreToilReservations(errorOnFailed bool) bool {
	return d.impl.TryMakePreToilReservations(d, errorOnFailed)
}

// Reserve claims target for the job. errorOnFailed logs failures loudly;
// contention is otherwise silent.
func (d *JobDriver) Reserve(target world.Target, maxClaimants, stackCount int, errorOnFailed bool) bool {
	m := d.Map()
	if m.Reservations.Reserve(d.Pawn.ID(), d.Job.ID, target, maxClaimants, stackCount, world.LayerDefault) {
		return true
	}
	if errorOnFailed {
		m.Log().Error("reservation failed",
			zap.Stringer("pawn", d.Pawn.thing),
			zap.Stringer("job", d.Job),
			zap.Stringer("target", target),
		)
	}
	return false
}

// start runs the first toil.
func (d *JobDriver) start() {
	d.toilsThisTick = 0
	if len(d.toils) == 0 {
		d.EndJobWith(CondSucceeded)
		return
	}
	d.startToil(0)
}

func (d *JobDriver) startToil(idx int) {
	d.gen++
	gen := d.gen
	d.curToilIndex = idx
	d.toilFinished = false
	toil := d.toils[idx]
	d.TicksLeftThisToil = toil.DefaultDuration
	d.toilsThisTick++
	if d.toilsThisTick > maxToilsPerTick {
		d.Map().Log().Error("toil chain did not settle",
			zap.Stringer("pawn", d.Pawn.thing),
			zap.Stringer("job", d.Job),
			zap.Stringer("toil", toil),
		)
		d.EndJobWith(CondErrored)
		return
	}
	if toil.InitAction != nil {
		toil.InitAction()
		if d.ended || d.gen != gen {
			return
		}
	}
	switch toil.CompleteMode {
	case CompleteInstant:
		d.ReadyForNextToil()
	case CompleteDelay:
		if d.TicksLeftThisToil <= 0 {
			d.ReadyForNextToil()
		}
	case CompletePatherArrival:
		if d.Pawn.Pather.Arrived() {
			d.ReadyForNextToil()
		}
	}
}

// DriverTick advances the job by one step: end conditions, then jump
// conditions, then the toil's tick actions, then its completion mode.
func (d *JobDriver) DriverTick() {
	if d.ended {
		return
	}
	defer d.recoverErrored("tick")

	d.toilsThisTick = 0
	if d.pendingEnd != CondNone {
		d.EndJobWith(d.pendingEnd)
		return
	}
	toil := d.CurToil()
	if toil == nil {
		return
	}
	gen := d.gen

	if cond := d.checkEndConditions(toil); cond != CondOngoing {
		d.EndJobWith(cond)
		return
	}
	if target := d.checkJumpConditions(toil); target != nil {
		d.JumpToToil(target)
		return
	}

	for _, act := range toil.PreTickActions {
		act()
		if d.ended || d.gen != gen {
			return
		}
	}
	if toil.TickAction != nil {
		toil.TickAction()
		if d.ended || d.gen != gen {
			return
		}
	}

	switch toil.CompleteMode {
	case CompleteInstant:
		d.ReadyForNextToil()
	case CompleteDelay:
		d.TicksLeftThisToil--
		if d.TicksLeftThisToil <= 0 {
			d.ReadyForNextToil()
		}
	case CompletePatherArrival:
		switch {
		case d.Pawn.Pather.Failed():
			d.EndJobWith(CondIncompletable)
		case d.Pawn.Pather.Arrived():
			d.ReadyForNextToil()
		}
	case CompleteFinishedBusy:
		if !d.Pawn.Stances.Busy() {
			d.ReadyForNextToil()
		}
	}
}

func (d *JobDriver) checkEndConditions(toil *Toil) JobCondition {
	for _, cond := range d.endConditions {
		if c := cond(); c != CondOngoing {
			return c
		}
	}
	for _, cond := range toil.endConditions {
		if c := cond(); c != CondOngoing {
			return c
		}
	}
	return CondOngoing
}

func (d *JobDriver) checkJumpConditions(toil *Toil) *Toil {
	for _, j := range d.jumpConditions {
		if j.pred() {
			return j.target
		}
	}
	for _, j := range toil.jumpConditions {
		if j.pred() {
			return j.target
		}
	}
	return nil
}

// ReadyForNextToil finishes the active toil and starts the next one, or
// ends the job Succeeded when none is left.
func (d *JobDriver) ReadyForNextToil() {
	if d.ended {
		return
	}
	d.finishCurToil()
	next := d.curToilIndex + 1
	if next >= len(d.toils) {
		d.EndJobWith(CondSucceeded)
		return
	}
	d.startToil(next)
}

// JumpToToil finishes the active toil and restarts at target, running its
// init action again and resetting its counters.
func (d *JobDriver) JumpToToil(target *Toil) {
	if d.ended {
		return
	}
	idx := -1
	for i, t := range d.toils {
		if t == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		d.Map().Log().Error("jump to toil outside the job",
			zap.Stringer("job", d.Job),
			zap.Stringer("toil", target),
		)
		d.EndJobWith(CondErrored)
		return
	}
	d.finishCurToil()
	d.startToil(idx)
}

// EndJobWith ends the job through the pawn's tracker.
func (d *JobDriver) EndJobWith(cond JobCondition) {
	if d.ended {
		return
	}
	if d.Pawn.Jobs.curDriver == d {
		d.Pawn.Jobs.EndCurrentJob(cond)
		return
	}
	d.cleanup(cond)
}

func (d *JobDriver) finishCurToil() {
	toil := d.CurToil()
	if toil == nil || d.toilFinished {
		return
	}
	d.toilFinished = true
	for _, fn := range toil.FinishActions {
		fn()
	}
}

// cleanup runs every outstanding finish action and releases all
// reservations of the job. It runs exactly once, on every ending path.
func (d *JobDriver) cleanup(cond JobCondition) {
	if d.ended {
		return
	}
	d.ended = true
	if toil := d.CurToil(); toil != nil && !d.toilFinished {
		d.toilFinished = true
		for _, fn := range toil.FinishActions {
			d.safeFinish(fn)
		}
	}
	for _, fn := range d.finishActions {
		d.safeFinish(fn)
	}
	if m := d.Map(); m != nil {
		m.Reservations.ReleaseAllForJob(d.Job.ID)
		m.PhysicalInteractions.ReleaseAllForJob(d.Job.ID)
	}
}

func (d *JobDriver) safeFinish(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.Pawn.log().Error("finish action panicked",
				zap.Stringer("job", d.Job),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}

// recoverErrored turns a panic inside toil code into an Errored job end.
func (d *JobDriver) recoverErrored(stage string) {
	r := recover()
	if r == nil {
		return
	}
	d.Pawn.log().Error("job driver panicked",
		zap.String("stage", stage),
		zap.Stringer("pawn", d.Pawn.thing),
		zap.Stringer("job", d.Job),
		zap.Any("panic", r),
		zap.ByteString("stack", debug.Stack()),
	)
	d.Pawn.Jobs.errored++
	d.EndJobWith(CondErrored)
}
