package ai

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/core/ecs"
	"github.com/woomy144/Rimworld/internal/world"
)

// jobRecord is the saved form of a Job. The bill is stored as its index
// in the bench of TargetA; the verb is re-derived from equipment.
type jobRecord struct {
	ID                  uint64         `json:"id"`
	Def                 string         `json:"def"`
	TargetA             world.Target   `json:"a"`
	TargetB             world.Target   `json:"b"`
	TargetC             world.Target   `json:"c"`
	TargetD             world.Target   `json:"d"`
	TargetQueueA        []world.Target `json:"queue_a,omitempty"`
	TargetQueueB        []world.Target `json:"queue_b,omitempty"`
	Count               int            `json:"count"`
	CountQueue          []int          `json:"count_queue,omitempty"`
	IgnoreForbidden     bool           `json:"ignore_forbidden,omitempty"`
	IgnoreDesignations  bool           `json:"ignore_designations,omitempty"`
	PlayerForced        bool           `json:"player_forced,omitempty"`
	HaulMode            HaulMode       `json:"haul_mode,omitempty"`
	ExpiryInterval      int            `json:"expiry,omitempty"`
	MaxNumStaticAttacks int            `json:"max_static_attacks,omitempty"`
	Bill                int            `json:"bill"`
	Giver               int            `json:"giver"`
}

// driverRecord is the running job plus the driver's own counters.
type driverRecord struct {
	Job               jobRecord       `json:"job"`
	CurToilIndex      int             `json:"cur_toil"`
	TicksLeftThisToil int             `json:"ticks_left"`
	StartTick         int             `json:"start_tick"`
	State             json.RawMessage `json:"state,omitempty"`
}

type pawnState struct {
	Job       *driverRecord `json:"job,omitempty"`
	Queue     []jobRecord   `json:"queue,omitempty"`
	Carried   ecs.EntityID  `json:"carried,omitempty"`
	Primary   ecs.EntityID  `json:"primary,omitempty"`
	BusyTicks int           `json:"busy_ticks,omitempty"`
}

func (p *Pawn) recordJob(j *Job) jobRecord {
	rec := jobRecord{
		ID:                  uint64(j.ID),
		Def:                 j.Def.Name,
		TargetA:             j.TargetA,
		TargetB:             j.TargetB,
		TargetC:             j.TargetC,
		TargetD:             j.TargetD,
		TargetQueueA:        j.TargetQueueA,
		TargetQueueB:        j.TargetQueueB,
		Count:               j.Count,
		CountQueue:          j.CountQueue,
		IgnoreForbidden:     j.IgnoreForbidden,
		IgnoreDesignations:  j.IgnoreDesignations,
		PlayerForced:        j.PlayerForced,
		HaulMode:            j.HaulMode,
		ExpiryInterval:      j.ExpiryInterval,
		MaxNumStaticAttacks: j.MaxNumStaticAttacks,
		Bill:                -1,
		Giver:               j.giver,
	}
	if j.Bill != nil {
		if m := p.Map(); m != nil {
			if b, ok := world.BehaviourOf[*world.Bench](m.TargetThing(j.TargetA)); ok {
				rec.Bill = b.BillIndex(j.Bill)
			}
		}
	}
	return rec
}

// SaveState writes the current job with its toil cursor, the queue, and
// what the pawn holds. Path state and reservations are rebuilt on load.
func (p *Pawn) SaveState() (json.RawMessage, error) {
	st := pawnState{BusyTicks: p.Stances.busyTicks}
	if c := p.Carry.Carried; c != nil {
		st.Carried = c.ID
	}
	if w := p.Equipment.Primary; w != nil {
		st.Primary = w.ID
	}
	if d := p.Jobs.curDriver; d != nil && !d.ended {
		rec := &driverRecord{
			Job:               p.recordJob(d.Job),
			CurToilIndex:      d.curToilIndex,
			TicksLeftThisToil: d.TicksLeftThisToil,
			StartTick:         d.StartTick,
		}
		if s, ok := d.impl.(DriverSaver); ok {
			raw, err := s.SaveState()
			if err != nil {
				return nil, fmt.Errorf("save driver of %v: %w", d.Job, err)
			}
			rec.State = raw
		}
		st.Job = rec
	}
	for _, j := range p.Jobs.Queue.jobs {
		st.Queue = append(st.Queue, p.recordJob(j))
	}
	return json.Marshal(st)
}

// LoadState keeps the record until PostLoadInit, when every thing it
// refers to is back on the map.
func (p *Pawn) LoadState(raw json.RawMessage) error {
	var st pawnState
	if err := json.Unmarshal(raw, &st); err != nil {
		return err
	}
	p.restored = &st
	return nil
}

func (p *Pawn) applyState(st *pawnState) {
	m := p.Map()
	if m == nil {
		return
	}
	p.Carry.Carried = heldThing(m, st.Carried)
	p.Equipment.Primary = heldThing(m, st.Primary)
	p.Stances.busyTicks = st.BusyTicks

	var errs []error
	for _, rec := range st.Queue {
		job, err := p.jobFromRecord(m, rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p.Jobs.Queue.EnqueueLast(job)
	}
	if st.Job != nil {
		job, err := p.jobFromRecord(m, st.Job.Job)
		if err != nil {
			errs = append(errs, err)
		} else if err := p.Jobs.restoreDriver(job, st.Job); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		m.Log().Warn("pawn job state dropped on load", zap.Stringer("pawn", p.thing), zap.Error(err))
	}
}

func heldThing(m *world.Map, id ecs.EntityID) *world.Thing {
	if id.IsZero() {
		return nil
	}
	t := m.Thing(id)
	if t == nil || t.Destroyed() || t.Spawned() {
		return nil
	}
	return t
}

func (p *Pawn) jobFromRecord(m *world.Map, rec jobRecord) (*Job, error) {
	def := m.Defs().Job(rec.Def)
	if def == nil {
		return nil, fmt.Errorf("job %q: %w", rec.Def, world.ErrUnknownDef)
	}
	j := &Job{
		ID:                  world.JobID(rec.ID),
		Def:                 def,
		TargetA:             rec.TargetA,
		TargetB:             rec.TargetB,
		TargetC:             rec.TargetC,
		TargetD:             rec.TargetD,
		TargetQueueA:        rec.TargetQueueA,
		TargetQueueB:        rec.TargetQueueB,
		Count:               rec.Count,
		CountQueue:          rec.CountQueue,
		IgnoreForbidden:     rec.IgnoreForbidden,
		IgnoreDesignations:  rec.IgnoreDesignations,
		PlayerForced:        rec.PlayerForced,
		HaulMode:            rec.HaulMode,
		ExpiryInterval:      rec.ExpiryInterval,
		MaxNumStaticAttacks: rec.MaxNumStaticAttacks,
		giver:               rec.Giver,
	}
	if rec.Bill >= 0 {
		b, ok := world.BehaviourOf[*world.Bench](m.TargetThing(rec.TargetA))
		if !ok || rec.Bill >= len(b.Bills) {
			return nil, fmt.Errorf("job %s#%d: bill %d not on its bench", rec.Def, rec.ID, rec.Bill)
		}
		j.Bill = b.Bills[rec.Bill]
	}
	return j, nil
}

// restoreDriver rebuilds the driver of a loaded job: toils are made again,
// reservations re-derived and the saved cursor and counters put back. A
// job that cannot re-reserve its targets ends Incompletable on its next
// tick. Only pather toils run their init again, to restart the walk.
func (t *JobTracker) restoreDriver(job *Job, rec *driverRecord) error {
	impl, err := t.drivers.make(job.Def.Driver)
	if err != nil {
		return err
	}
	d := newJobDriver(t.pawn, job, impl)
	d.StartTick = rec.StartTick
	if s, ok := impl.(DriverSaver); ok && len(rec.State) > 0 {
		if err := s.LoadState(rec.State); err != nil {
			return fmt.Errorf("driver state of %v: %w", job, err)
		}
	}
	t.cur, t.curDriver = job, d
	d.setup()
	if !d.TryMakePreToilReservations(false) {
		d.pendingEnd = CondIncompletable
	}
	if rec.CurToilIndex < 0 || rec.CurToilIndex >= len(d.toils) {
		d.pendingEnd = CondErrored
		return nil
	}
	d.curToilIndex = rec.CurToilIndex
	d.TicksLeftThisToil = rec.TicksLeftThisToil
	d.gen++
	if d.pendingEnd != CondNone {
		return nil
	}
	if toil := d.toils[d.curToilIndex]; toil.CompleteMode == CompletePatherArrival && toil.InitAction != nil {
		t.enter()
		defer t.leave()
		func() {
			defer d.recoverErrored("restore")
			toil.InitAction()
		}()
	}
	return nil
}
