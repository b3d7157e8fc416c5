package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woomy144/Rimworld/internal/core/event"
	"github.com/woomy144/Rimworld/internal/world"
)

func TestContestedCellReservation(t *testing.T) {
	m := newTestMap(t)
	first := spawnPawn(t, m, 1, 1)
	second := spawnPawn(t, m, 9, 9)

	require.True(t, first.Jobs.StartJob(job(t, m, "Goto", cell(5, 5)), CondNone, false))
	assert.True(t, m.Reservations.IsReservedBy(first.ID(), cell(5, 5)))

	assert.False(t, second.Jobs.StartJob(job(t, m, "Goto", cell(5, 5)), CondNone, false))
	assert.Equal(t, CondIncompletable, second.Jobs.LastCondition())
	assert.Nil(t, second.Jobs.CurJob())

	first.Jobs.EndCurrentJob(CondInterruptForced)
	assert.False(t, m.Reservations.IsReserved(cell(5, 5)))
}

func TestGotoArrives(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 5)
	require.True(t, p.Jobs.StartJob(job(t, m, "Goto", cell(8, 5)), CondNone, false))

	runTicks(m, 1, 100)
	assert.Equal(t, world.Cell{X: 8, Z: 5}, p.Position())
	assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
	assert.Zero(t, m.Reservations.Count())
}

func TestInterruptedJobResumes(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 1, 1)

	walk := job(t, m, "Goto", cell(15, 15))
	require.True(t, p.Jobs.StartJob(walk, CondNone, false))
	walkID := walk.ID
	runTicks(m, 1, 30)

	wait := job(t, m, "Wait", cell(0, 0))
	require.True(t, p.Jobs.TryTakeOrderedJob(wait))
	assert.Same(t, wait, p.Jobs.CurJob())
	assert.True(t, wait.PlayerForced)
	require.Equal(t, 1, p.Jobs.Queue.Len())
	assert.Same(t, walk, p.Jobs.Queue.Peek())
	assert.Empty(t, m.Reservations.ForJob(walkID))

	p.Jobs.EndCurrentJob(CondSucceeded)
	assert.Same(t, walk, p.Jobs.CurJob())
	assert.Equal(t, walkID, walk.ID)
	assert.True(t, m.Reservations.IsReservedBy(p.ID(), cell(15, 15)))
	assert.Zero(t, p.Jobs.Queue.Len())
}

func TestUnsuspendableJobIsDropped(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 1, 1)
	fire := spawnThing(t, m, "Fire", 10, 10)

	require.True(t, p.Jobs.StartJob(job(t, m, "BeatFire", world.ThingTarget(fire)), CondNone, false))
	require.True(t, p.Jobs.TryTakeOrderedJob(job(t, m, "Wait", cell(1, 1))))
	assert.Zero(t, p.Jobs.Queue.Len())
	assert.Equal(t, CondInterruptForced, p.Jobs.LastCondition())
}

func TestGiversInPriorityOrder(t *testing.T) {
	var asked []string
	never := &funcGiver{name: "never", fn: func(p *Pawn) *Job {
		asked = append(asked, "never")
		return nil
	}}
	idle := &IdleGiver{WaitTicks: 50}
	m := newTestMap(t, never, idle)
	p := spawnPawn(t, m, 3, 3)

	m.Tick(1)
	assert.Equal(t, []string{"never"}, asked)
	require.NotNil(t, p.Jobs.CurJob())
	assert.Equal(t, "Wait", p.Jobs.CurJob().Def.Name)
	assert.Equal(t, 1, p.Jobs.CurJob().giver)
}

func TestJobExpiry(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 3, 3)
	w := job(t, m, "Wait", cell(3, 3))
	w.ExpiryInterval = 10
	require.True(t, p.Jobs.StartJob(w, CondNone, false))

	runTicks(m, 1, 10)
	assert.Same(t, w, p.Jobs.CurJob())
	m.Tick(10)
	assert.Nil(t, p.Jobs.CurJob())
	assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
}

func TestHigherPriorityGiverOverrides(t *testing.T) {
	var urgent *Job
	m := newTestMap(t,
		&funcGiver{name: "urgent", fn: func(p *Pawn) *Job { return urgent }},
		&funcGiver{name: "walk", fn: func(p *Pawn) *Job {
			return NewJob(p.Map().Defs().Job("Goto"), cell(18, 18))
		}},
	)
	p := spawnPawn(t, m, 1, 1)

	m.Tick(1)
	walk := p.Jobs.CurJob()
	require.NotNil(t, walk)
	assert.Equal(t, "Goto", walk.Def.Name)

	assert.False(t, p.Jobs.CheckForJobOverride())

	urgent = NewJob(m.Defs().Job("Wait"), cell(1, 1))
	assert.True(t, p.Jobs.CheckForJobOverride())
	assert.Same(t, urgent, p.Jobs.CurJob())
	assert.Equal(t, 0, urgent.giver)
	assert.Same(t, walk, p.Jobs.Queue.Peek())
}

func TestPlayerForcedJobIsNotOverridden(t *testing.T) {
	m := newTestMap(t,
		&funcGiver{name: "urgent", fn: func(p *Pawn) *Job {
			return NewJob(p.Map().Defs().Job("Wait"), cell(1, 1))
		}},
	)
	p := spawnPawn(t, m, 1, 1)
	walk := job(t, m, "Goto", cell(18, 18))
	walk.giver = 1
	require.True(t, p.Jobs.TryTakeOrderedJob(walk))
	assert.False(t, p.Jobs.CheckForJobOverride())
}

func TestTooManyJobsInOneTick(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 1, 1)
	started := 0
	for i := 0; i < maxJobsPerTick+3; i++ {
		if p.Jobs.StartJob(job(t, m, "Wait", cell(1, 1)), CondInterruptForced, false) {
			started++
		}
	}
	assert.Equal(t, maxJobsPerTick, started)
}

func TestJobEndedEvent(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 1, 1)

	var ended []event.JobEnded
	event.Subscribe(m.Bus(), func(e event.JobEnded) { ended = append(ended, e) })

	w := job(t, m, "Wait", cell(1, 1))
	require.True(t, p.Jobs.StartJob(w, CondNone, false))
	p.Jobs.EndCurrentJob(CondInterruptForced)

	m.Bus().SwapBuffers()
	m.Bus().DispatchAll()
	require.Len(t, ended, 1)
	assert.Equal(t, uint64(w.ID), ended[0].JobID)
	assert.Equal(t, "Wait", ended[0].JobDef)
	assert.Equal(t, "interrupt_forced", ended[0].Condition)
	assert.Equal(t, p.ID(), ended[0].PawnID)
}

func TestSuspensionDoesNotEmitEnded(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 1, 1)

	var ended []event.JobEnded
	event.Subscribe(m.Bus(), func(e event.JobEnded) { ended = append(ended, e) })

	require.True(t, p.Jobs.StartJob(job(t, m, "Goto", cell(10, 10)), CondNone, false))
	require.True(t, p.Jobs.TryTakeOrderedJob(job(t, m, "Wait", cell(1, 1))))

	m.Bus().SwapBuffers()
	m.Bus().DispatchAll()
	assert.Empty(t, ended)
}
