package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woomy144/Rimworld/internal/world"
)

func TestStepOrderEndJumpThenTick(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)

	var order []string
	j := withScript(p, &scriptDriver{toils: func(d *JobDriver) []*Toil {
		other := Label("other")
		toil := NewToil("watched")
		toil.CompleteMode = CompleteNever
		toil.AddEndCondition(func() JobCondition {
			order = append(order, "end")
			return CondOngoing
		})
		toil.AddJumpCondition(func() bool {
			order = append(order, "jump")
			return false
		}, other)
		toil.AddPreTickAction(func() { order = append(order, "pretick") })
		toil.TickAction = func() { order = append(order, "tick") }
		return []*Toil{toil, other}
	}})
	require.True(t, p.Jobs.StartJob(j, CondNone, false))

	m.Tick(1)
	assert.Equal(t, []string{"end", "jump", "pretick", "tick"}, order)
}

func TestEndConditionBeatsJump(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)

	jumped := false
	j := withScript(p, &scriptDriver{toils: func(d *JobDriver) []*Toil {
		other := Do("other", func() { jumped = true })
		toil := NewToil("both")
		toil.CompleteMode = CompleteNever
		FailOn(toil, func() bool { return true })
		JumpIf(toil, func() bool { return true }, other)
		return []*Toil{toil, other}
	}})
	require.True(t, p.Jobs.StartJob(j, CondNone, false))

	m.Tick(1)
	assert.False(t, jumped)
	assert.Nil(t, p.Jobs.CurJob())
	assert.Equal(t, CondIncompletable, p.Jobs.LastCondition())
}

func TestCompletionModes(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)

	var started []string
	mark := func(toil *Toil) *Toil {
		init := toil.InitAction
		toil.InitAction = func() {
			started = append(started, toil.Label)
			if init != nil {
				init()
			}
		}
		return toil
	}
	j := withScript(p, &scriptDriver{toils: func(d *JobDriver) []*Toil {
		return []*Toil{
			mark(Label("instant")),
			mark(Wait(3)),
			mark(Label("done")),
		}
	}})
	require.True(t, p.Jobs.StartJob(j, CondNone, false))
	assert.Equal(t, []string{"instant", "wait"}, started)

	runTicks(m, 1, 3)
	assert.Equal(t, "wait", p.Jobs.CurDriver().CurToil().Label)
	m.Tick(3)
	assert.Equal(t, []string{"instant", "wait", "done"}, started)
	assert.Nil(t, p.Jobs.CurJob())
	assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
}

func TestJumpLoopVisitsEachQueuedTarget(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)

	visits := 0
	j := withScript(p, &scriptDriver{toils: func(d *JobDriver) []*Toil {
		after := Label("after")
		extract := ExtractNextTargetFromQueue(TargetA)
		return []*Toil{
			JumpIfToil(func() bool { return d.Job.QueueLen(TargetA) == 0 }, after),
			extract,
			Do("visit", func() { visits++ }),
			Wait(2),
			JumpIfHaveTargetInQueue(TargetA, extract),
			after,
		}
	}})
	j.TargetQueueA = []world.Target{cell(1, 1), cell(2, 1), cell(3, 1)}
	require.True(t, p.Jobs.StartJob(j, CondNone, false))

	runTicks(m, 1, 20)
	assert.Equal(t, 3, visits)
	assert.Equal(t, cell(3, 1), j.TargetA)
	assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
}

func TestEmptyQueueSkipsLoop(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)

	visits := 0
	j := withScript(p, &scriptDriver{toils: func(d *JobDriver) []*Toil {
		after := Label("after")
		extract := ExtractNextTargetFromQueue(TargetA)
		return []*Toil{
			JumpIfToil(func() bool { return d.Job.QueueLen(TargetA) == 0 }, after),
			extract,
			Do("visit", func() { visits++ }),
			JumpIfHaveTargetInQueue(TargetA, extract),
			after,
		}
	}})
	assert.False(t, p.Jobs.StartJob(j, CondNone, false))
	assert.Zero(t, visits)
	assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
}

func TestSelfJumpingChainErrors(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)

	j := withScript(p, &scriptDriver{
		reserve: []world.Target{cell(4, 4)},
		toils: func(d *JobDriver) []*Toil {
			loop := Label("loop")
			return []*Toil{loop, JumpToil(loop)}
		},
	})
	assert.False(t, p.Jobs.StartJob(j, CondNone, false))
	assert.Equal(t, CondErrored, p.Jobs.LastCondition())
	assert.False(t, m.Reservations.IsReserved(cell(4, 4)))
}

func TestPanicInToilEndsJobErrored(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)
	other := spawnPawn(t, m, 10, 10)

	finished := false
	j := withScript(p, &scriptDriver{
		reserve: []world.Target{cell(4, 4)},
		toils: func(d *JobDriver) []*Toil {
			toil := NewToil("explode")
			toil.CompleteMode = CompleteNever
			toil.TickAction = func() { panic("broken toil") }
			toil.AddFinishAction(func() { finished = true })
			return []*Toil{toil}
		},
	})
	require.True(t, p.Jobs.StartJob(j, CondNone, false))
	require.True(t, other.Jobs.StartJob(job(t, m, "Goto", cell(14, 10)), CondNone, false))
	id := j.ID

	require.NotPanics(t, func() { m.Tick(1) })
	assert.Equal(t, CondErrored, p.Jobs.LastCondition())
	assert.Equal(t, 1, p.Jobs.Errored())
	assert.True(t, finished)
	assert.Empty(t, m.Reservations.ForJob(id))

	runTicks(m, 2, 100)
	assert.Equal(t, world.Cell{X: 14, Z: 10}, other.Position())
}

func TestPanicInInitEndsJobErrored(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)

	j := withScript(p, &scriptDriver{
		reserve: []world.Target{cell(4, 4)},
		toils: func(d *JobDriver) []*Toil {
			return []*Toil{Do("explode", func() { panic("bad init") })}
		},
	})
	assert.False(t, p.Jobs.StartJob(j, CondNone, false))
	assert.Equal(t, CondErrored, p.Jobs.LastCondition())
	assert.Nil(t, p.Jobs.CurJob())
	assert.Zero(t, m.Reservations.Count())
}

func TestReservationsReleasedOnEveryEnd(t *testing.T) {
	cases := []struct {
		name string
		end  func(t *testing.T, m *world.Map, p *Pawn, blocker *world.Thing)
		want JobCondition
	}{
		{
			name: "succeeded",
			end:  func(t *testing.T, m *world.Map, p *Pawn, _ *world.Thing) { runTicks(m, 1, 5) },
			want: CondSucceeded,
		},
		{
			name: "incompletable",
			end: func(t *testing.T, m *world.Map, p *Pawn, blocker *world.Thing) {
				blocker.Destroy(world.DestroyVanish)
				m.Tick(1)
			},
			want: CondIncompletable,
		},
		{
			name: "interrupted",
			end: func(t *testing.T, m *world.Map, p *Pawn, _ *world.Thing) {
				p.Jobs.EndCurrentJob(CondInterruptForced)
			},
			want: CondInterruptForced,
		},
		{
			name: "pawn destroyed",
			end: func(t *testing.T, m *world.Map, p *Pawn, _ *world.Thing) {
				p.Thing().Destroy(world.DestroyKill)
			},
			want: CondInterruptForced,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMap(t)
			p := spawnPawn(t, m, 2, 2)
			steel := spawnThing(t, m, "Steel", 6, 6)
			j := withScript(p, &scriptDriver{
				reserve: []world.Target{cell(5, 5), world.ThingTarget(steel)},
				toils: func(d *JobDriver) []*Toil {
					FailOnDestroyedOrNull(d, TargetA)
					return []*Toil{Wait(3)}
				},
			})
			j.TargetA = world.ThingTarget(steel)
			require.True(t, p.Jobs.StartJob(j, CondNone, false))
			require.Len(t, m.Reservations.ForJob(j.ID), 2)

			tc.end(t, m, p, steel)
			assert.Equal(t, tc.want, p.Jobs.LastCondition())
			assert.Empty(t, m.Reservations.ForJob(j.ID))
			assert.Empty(t, m.PhysicalInteractions.ForJob(j.ID))
		})
	}
}

func TestJumpToToilOutsideJobErrors(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)

	stray := Label("stray")
	j := withScript(p, &scriptDriver{toils: func(d *JobDriver) []*Toil {
		toil := NewToil("hold")
		toil.CompleteMode = CompleteNever
		toil.TickAction = func() { d.JumpToToil(stray) }
		return []*Toil{toil}
	}})
	require.True(t, p.Jobs.StartJob(j, CondNone, false))
	m.Tick(1)
	assert.Equal(t, CondErrored, p.Jobs.LastCondition())
}

func TestZeroLengthWaitCompletesAtOnce(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)

	reached := false
	j := withScript(p, &scriptDriver{toils: func(d *JobDriver) []*Toil {
		return []*Toil{
			Wait(0),
			Do("after", func() { reached = true }),
		}
	}})
	assert.False(t, p.Jobs.StartJob(j, CondNone, false))
	assert.True(t, reached)
	assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
}

func TestEndOnNoTargetInQueue(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)

	j := withScript(p, &scriptDriver{toils: func(d *JobDriver) []*Toil {
		hold := NewToil("hold")
		hold.CompleteMode = CompleteNever
		EndOnNoTargetInQueue(hold, TargetA, CondSucceeded)
		return []*Toil{ExtractNextTargetFromQueue(TargetA), hold}
	}})
	j.TargetQueueA = []world.Target{cell(1, 1), cell(2, 1)}
	require.True(t, p.Jobs.StartJob(j, CondNone, false))

	m.Tick(1)
	require.NotNil(t, p.Jobs.CurJob())
	assert.Equal(t, cell(1, 1), j.TargetA)

	j.TargetQueueA = nil
	m.Tick(2)
	assert.Nil(t, p.Jobs.CurJob())
	assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
}

func TestJumpIfTargetDespawnedOrNull(t *testing.T) {
	m := newTestMap(t)
	steel := spawnThing(t, m, "Steel", 6, 6)
	gone := spawnThing(t, m, "Steel", 7, 7)
	gone.Destroy(world.DestroyVanish)

	var visited []world.Target
	script := &scriptDriver{toils: func(d *JobDriver) []*Toil {
		after := Label("after")
		return []*Toil{
			JumpIfTargetDespawnedOrNull(TargetA, after),
			Do("visit", func() { visited = append(visited, d.Job.TargetA) }),
			after,
		}
	}}
	for i, target := range []*world.Thing{steel, gone} {
		p := spawnPawn(t, m, 2+i, 2)
		j := withScript(p, script)
		j.TargetA = world.ThingTarget(target)
		p.Jobs.StartJob(j, CondNone, false)
		assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
	}
	assert.Equal(t, []world.Target{world.ThingTarget(steel)}, visited)
}

func TestClearTargetThenJumpIfInvalid(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)

	reached := false
	j := withScript(p, &scriptDriver{toils: func(d *JobDriver) []*Toil {
		after := Label("after")
		return []*Toil{
			JumpIfTargetInvalid(TargetA, after),
			ClearTarget(TargetA),
			JumpIfTargetInvalid(TargetA, after),
			Do("still_valid", func() { reached = true }),
			after,
		}
	}})
	j.TargetA = cell(4, 4)
	p.Jobs.StartJob(j, CondNone, false)

	assert.False(t, reached)
	assert.False(t, j.TargetA.IsValid())
	assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
}

func TestJumpIfDespawnedOrNullMidToil(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)
	steel := spawnThing(t, m, "Steel", 6, 6)

	jumped := false
	j := withScript(p, &scriptDriver{toils: func(d *JobDriver) []*Toil {
		after := Do("after", func() { jumped = true })
		hold := NewToil("hold")
		hold.CompleteMode = CompleteNever
		JumpIfDespawnedOrNull(hold, TargetA, after)
		return []*Toil{hold, after}
	}})
	j.TargetA = world.ThingTarget(steel)
	require.True(t, p.Jobs.StartJob(j, CondNone, false))

	m.Tick(1)
	assert.False(t, jumped)
	steel.Destroy(world.DestroyVanish)
	m.Tick(2)
	assert.True(t, jumped)
	assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
}

func TestReserveQueueClaimsEveryTarget(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)

	j := withScript(p, &scriptDriver{toils: func(d *JobDriver) []*Toil {
		return []*Toil{ReserveQueue(TargetA, 1), Wait(5)}
	}})
	j.TargetQueueA = []world.Target{cell(1, 1), cell(3, 1)}
	require.True(t, p.Jobs.StartJob(j, CondNone, false))

	assert.Len(t, m.Reservations.ForJob(j.ID), 2)
	assert.True(t, m.Reservations.IsReservedBy(p.ID(), cell(1, 1)))
	assert.True(t, m.Reservations.IsReservedBy(p.ID(), cell(3, 1)))
}

func TestReserveQueueFailsWhenOneIsHeld(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)
	other := spawnPawn(t, m, 8, 8)
	require.True(t, m.Reservations.Reserve(other.ID(), 99, cell(3, 1), 1, world.StackAll, world.LayerDefault))

	j := withScript(p, &scriptDriver{toils: func(d *JobDriver) []*Toil {
		return []*Toil{ReserveQueue(TargetA, 1), Wait(5)}
	}})
	j.TargetQueueA = []world.Target{cell(1, 1), cell(3, 1)}
	assert.False(t, p.Jobs.StartJob(j, CondNone, false))

	assert.Equal(t, CondIncompletable, p.Jobs.LastCondition())
	assert.Empty(t, m.Reservations.ForJob(j.ID))
	assert.True(t, m.Reservations.IsReservedBy(other.ID(), cell(3, 1)))
}

func TestTouchPathClaimsPhysicalInteraction(t *testing.T) {
	m := newTestMap(t)
	steel := spawnThing(t, m, "Steel", 10, 5)
	script := &scriptDriver{toils: func(d *JobDriver) []*Toil {
		gotoSteel := GotoThing(TargetA, PathTouch)
		FailOnSomeonePhysicallyInteracting(gotoSteel, TargetA)
		return []*Toil{gotoSteel, Wait(1)}
	}}

	first := spawnPawn(t, m, 2, 5)
	j1 := withScript(first, script)
	j1.TargetA = world.ThingTarget(steel)
	require.True(t, first.Jobs.StartJob(j1, CondNone, false))
	assert.True(t, m.PhysicalInteractions.IsReservedBy(first.ID(), world.ThingTarget(steel)))
	assert.Len(t, m.PhysicalInteractions.ForJob(j1.ID), 1)

	second := spawnPawn(t, m, 2, 8)
	j2 := withScript(second, script)
	j2.TargetA = world.ThingTarget(steel)
	require.True(t, second.Jobs.StartJob(j2, CondNone, false))
	assert.False(t, m.PhysicalInteractions.IsReservedBy(second.ID(), world.ThingTarget(steel)))

	m.Tick(1)
	assert.Nil(t, second.Jobs.CurJob())
	assert.Equal(t, CondIncompletable, second.Jobs.LastCondition())
	require.NotNil(t, first.Jobs.CurJob())

	runTicks(m, 2, 300)
	assert.Nil(t, first.Jobs.CurJob())
	assert.Equal(t, CondSucceeded, first.Jobs.LastCondition())
	assert.Empty(t, m.PhysicalInteractions.ForJob(j1.ID))
}
