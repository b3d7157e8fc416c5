package ai

import (
	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/core/event"
)

const (
	// maxJobsPerTick stops a pawn from cycling through jobs that all end
	// on the spot.
	maxJobsPerTick = 10
	// jobOverrideInterval is how often a busy pawn looks for more urgent
	// work from higher-priority givers.
	jobOverrideInterval = 30
)

// JobGiver proposes a job for an idle pawn, or nil.
type JobGiver interface {
	Name() string
	TryGiveJob(p *Pawn) *Job
}

// JobQueue holds jobs waiting to run after the current one.
type JobQueue struct {
	jobs []*Job
}

func (q *JobQueue) EnqueueFirst(j *Job) { q.jobs = append([]*Job{j}, q.jobs...) }
func (q *JobQueue) EnqueueLast(j *Job)  { q.jobs = append(q.jobs, j) }

// Dequeue pops the first job, or nil.
func (q *JobQueue) Dequeue() *Job {
	if len(q.jobs) == 0 {
		return nil
	}
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j
}

func (q *JobQueue) Peek() *Job {
	if len(q.jobs) == 0 {
		return nil
	}
	return q.jobs[0]
}

func (q *JobQueue) Len() int     { return len(q.jobs) }
func (q *JobQueue) Jobs() []*Job { return append([]*Job(nil), q.jobs...) }
func (q *JobQueue) Clear()       { q.jobs = nil }

// JobTracker owns a pawn's current job, its driver and the queue. Starting
// a follow-up job is deferred while the tracker is inside its own tick or
// a start call, so a job ending mid-step never re-enters the tracker.
type JobTracker struct {
	pawn    *Pawn
	drivers *DriverTable
	Givers  []JobGiver
	Queue   JobQueue

	cur       *Job
	curDriver *JobDriver

	depth         int
	wantNewJob    bool
	jobsTick      int
	jobsThisTick  int
	lastCondition JobCondition
	errored       int
}

func newJobTracker(p *Pawn, drivers *DriverTable, givers []JobGiver) *JobTracker {
	return &JobTracker{pawn: p, drivers: drivers, Givers: givers, jobsTick: -1}
}

func (t *JobTracker) CurJob() *Job                { return t.cur }
func (t *JobTracker) CurDriver() *JobDriver       { return t.curDriver }
func (t *JobTracker) LastCondition() JobCondition { return t.lastCondition }

// Errored counts jobs that ended because toil code panicked.
func (t *JobTracker) Errored() int { return t.errored }

func (t *JobTracker) enter() { t.depth++ }

func (t *JobTracker) leave() {
	t.depth--
	if t.depth == 0 && t.wantNewJob {
		t.wantNewJob = false
		t.TryFindAndStartJob()
	}
}

// StartJob makes job current. The running job is suspended to the front
// of the queue when resumeCurJobAfterwards is set and its def allows it;
// otherwise it ends with lastCondition. It reports whether job is running
// after the call.
func (t *JobTracker) StartJob(job *Job, lastCondition JobCondition, resumeCurJobAfterwards bool) bool {
	m := t.pawn.thing.Map()
	if m == nil {
		return false
	}
	t.enter()
	defer t.leave()

	tick := m.TicksGame()
	if t.jobsTick != tick {
		t.jobsTick, t.jobsThisTick = tick, 0
	}
	t.jobsThisTick++
	if t.jobsThisTick > maxJobsPerTick {
		m.Log().Warn("too many jobs started in one tick",
			zap.Stringer("pawn", t.pawn.thing),
			zap.Stringer("job", job),
		)
		return false
	}

	if t.curDriver != nil {
		prev := t.cur
		if resumeCurJobAfterwards && prev.Def.Suspendable {
			t.Queue.EnqueueFirst(prev)
			t.cleanupCurrentJob(lastCondition, false)
		} else {
			t.cleanupCurrentJob(lastCondition, true)
		}
	}

	if job.ID == 0 {
		job.ID = m.NextJobID()
	}
	impl, err := t.drivers.make(job.Def.Driver)
	if err != nil {
		m.Log().Error("cannot start job", zap.Stringer("job", job), zap.Error(err))
		return false
	}
	d := newJobDriver(t.pawn, job, impl)
	d.StartTick = tick
	t.cur, t.curDriver = job, d
	return t.setupDriver(d)
}

func (t *JobTracker) setupDriver(d *JobDriver) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t.pawn.log().Error("job setup panicked",
				zap.Stringer("pawn", t.pawn.thing),
				zap.Stringer("job", d.Job),
				zap.Any("panic", r),
			)
			t.errored++
			if t.curDriver == d {
				t.cleanupCurrentJob(CondErrored, true)
			}
			ok = false
		}
	}()
	if !d.TryMakePreToilReservations(false) {
		t.cleanupCurrentJob(CondIncompletable, true)
		return false
	}
	d.setup()
	d.start()
	return t.curDriver == d
}

// EndCurrentJob ends the running job right away: its cleanup runs and its
// reservations are released. A new job is looked for as soon as the
// tracker is not in the middle of a step.
func (t *JobTracker) EndCurrentJob(cond JobCondition) {
	if t.curDriver == nil {
		return
	}
	t.cleanupCurrentJob(cond, true)
	if t.depth > 0 {
		t.wantNewJob = true
		return
	}
	t.TryFindAndStartJob()
}

// StopAll ends the running job without starting another and drops the
// queue. Used when the pawn leaves the map.
func (t *JobTracker) StopAll(cond JobCondition) {
	if t.curDriver != nil {
		t.cleanupCurrentJob(cond, true)
	}
	t.Queue.Clear()
	t.wantNewJob = false
}

func (t *JobTracker) cleanupCurrentJob(cond JobCondition, ended bool) {
	d, job := t.curDriver, t.cur
	d.cleanup(cond)
	t.cur, t.curDriver = nil, nil
	if !ended {
		return
	}
	t.lastCondition = cond
	m := t.pawn.Map()
	if m == nil {
		return
	}
	switch cond {
	case CondErrored:
		m.Log().Error("job errored", zap.Stringer("pawn", t.pawn.thing), zap.Stringer("job", job))
	case CondIncompletable:
		m.Log().Debug("job incompletable", zap.Stringer("pawn", t.pawn.thing), zap.Stringer("job", job))
	}
	event.Emit(m.Bus(), event.JobEnded{
		Tick:      m.TicksGame(),
		PawnID:    t.pawn.ID(),
		JobID:     uint64(job.ID),
		JobDef:    job.Def.Name,
		Condition: cond.String(),
	})
}

// TryFindAndStartJob resumes the first queued job that can start, then
// asks the givers in priority order.
func (t *JobTracker) TryFindAndStartJob() bool {
	if t.curDriver != nil || t.pawn.thing.Map() == nil {
		return t.curDriver != nil
	}
	t.enter()
	defer t.leave()

	for t.Queue.Len() > 0 {
		if t.StartJob(t.Queue.Dequeue(), CondNone, false) {
			return true
		}
		if t.curDriver != nil || t.jobsThisTick >= maxJobsPerTick {
			return t.curDriver != nil
		}
	}
	for i, g := range t.Givers {
		job := t.tryGive(g)
		if job == nil {
			continue
		}
		job.giver = i
		if t.StartJob(job, CondNone, false) {
			return true
		}
		if t.curDriver != nil || t.jobsThisTick >= maxJobsPerTick {
			break
		}
	}
	return t.curDriver != nil
}

func (t *JobTracker) tryGive(g JobGiver) (job *Job) {
	defer func() {
		if r := recover(); r != nil {
			t.pawn.log().Error("job giver panicked", zap.String("giver", g.Name()), zap.Any("panic", r))
			job = nil
		}
	}()
	return g.TryGiveJob(t.pawn)
}

// TryTakeOrderedJob interrupts the current job with a player order. The
// interrupted job resumes afterwards if its def allows.
func (t *JobTracker) TryTakeOrderedJob(job *Job) bool {
	job.PlayerForced = true
	return t.StartJob(job, CondInterruptForced, true)
}

// CheckForJobOverride lets a higher-priority giver interrupt the current
// job when it is casually interruptible. It reports whether a new job
// started.
func (t *JobTracker) CheckForJobOverride() bool {
	cur := t.cur
	if cur == nil || cur.giver <= 0 || cur.PlayerForced || !cur.Def.CasualInterruptible {
		return false
	}
	for i := 0; i < cur.giver && i < len(t.Givers); i++ {
		job := t.tryGive(t.Givers[i])
		if job == nil || job.Def == cur.Def {
			continue
		}
		job.giver = i
		return t.StartJob(job, CondInterruptOptional, true)
	}
	return false
}

// JobTrackerTick runs once per tick for a spawned pawn.
func (t *JobTracker) JobTrackerTick() {
	m := t.pawn.thing.Map()
	if m == nil {
		return
	}
	t.enter()
	defer t.leave()

	if t.curDriver == nil {
		t.TryFindAndStartJob()
		return
	}
	tick := m.TicksGame()
	d, job := t.curDriver, t.cur
	if job.ExpiryInterval > 0 && tick > d.StartTick && (tick-d.StartTick)%job.ExpiryInterval == 0 {
		if !job.Def.CheckOverrideOnExpire {
			t.EndCurrentJob(CondSucceeded)
			return
		}
		if t.CheckForJobOverride() {
			return
		}
	}
	if t.pawn.thing.IsHashIntervalTick(jobOverrideInterval) && t.CheckForJobOverride() {
		return
	}
	d.DriverTick()
}
