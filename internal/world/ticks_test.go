package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHashIntervalTick(t *testing.T) {
	var fired []int
	for step := 0; step < 600; step++ {
		if IsHashIntervalTick(step, 37, 150) {
			fired = append(fired, step)
		}
	}
	assert.Equal(t, []int{113, 263, 413, 563}, fired)
	assert.False(t, IsHashIntervalTick(10, 0, 0))
}

func TestThingHashIntervalTickFiresOnlyOnItsPhase(t *testing.T) {
	m := recorderMap(t)
	th := spawn(t, m, "Door", 3, 3)
	th.hashOffset = 37
	p, ok := BehaviourOf[*recorder](th)
	require.True(t, ok)

	var due []int
	p.onTick = func(p *recorder) {
		if p.thing.IsHashIntervalTick(150) {
			due = append(due, p.thing.owner.TicksGame())
		}
	}
	runTicks(m, 0, 600)
	assert.Len(t, p.ticks, 600)
	assert.Equal(t, []int{113, 263, 413, 563}, due)
}

func TestRareListRunsOncePerInterval(t *testing.T) {
	m := newTestMap(t)
	potatoes := spawn(t, m, "RawPotatoes", 4, 4)
	rot, ok := CompOf[*CompRottable](potatoes)
	require.True(t, ok)

	runTicks(m, 0, 250)
	assert.InDelta(t, 250, rot.RotProgress, 1e-9)
	runTicks(m, 250, 500)
	assert.InDelta(t, 500, rot.RotProgress, 1e-9)
}

func TestRareBucketsFollowHashOffset(t *testing.T) {
	m := newTestMap(t)
	var things []*Thing
	for i := 0; i < 40; i++ {
		things = append(things, spawn(t, m, "RawPotatoes", i%20, i/20))
	}
	for _, th := range things {
		assert.True(t, m.Ticks.Rare().Contains(th))
		due := -1
		for tick := 0; tick < 250; tick++ {
			if IsHashIntervalTick(tick, th.HashOffset(), 250) {
				due = tick
			}
		}
		assert.Equal(t, due, m.Ticks.Rare().bucketOf(th))
	}
	assert.Equal(t, 40, m.Ticks.Rare().Len())
}

func TestDestroyedDuringPassIsSkipped(t *testing.T) {
	m := recorderMap(t)
	a := spawn(t, m, "Door", 1, 1)
	b := spawn(t, m, "Door", 2, 2)
	pa, _ := BehaviourOf[*recorder](a)
	pb, _ := BehaviourOf[*recorder](b)
	pa.onTick = func(*recorder) {
		if !b.Destroyed() {
			b.Destroy(DestroyKill)
		}
	}

	m.Tick(0)
	assert.Len(t, pa.ticks, 1)
	assert.Empty(t, pb.ticks)
	assert.Equal(t, 1, m.Ticks.Normal().Len())

	m.Tick(1)
	assert.Len(t, pa.ticks, 2)
	assert.Empty(t, pb.ticks)
}

func TestSpawnedDuringPassTicksNextStep(t *testing.T) {
	m := recorderMap(t)
	a := spawn(t, m, "Door", 1, 1)
	pa, _ := BehaviourOf[*recorder](a)
	var child *Thing
	pa.onTick = func(*recorder) {
		if child == nil {
			child = spawn(t, m, "Door", 5, 5)
		}
	}

	m.Tick(0)
	require.NotNil(t, child)
	pc, _ := BehaviourOf[*recorder](child)
	assert.Empty(t, pc.ticks)
	m.Tick(1)
	assert.Equal(t, []int{1}, pc.ticks)
}

func TestTickPanicIsIsolated(t *testing.T) {
	m := recorderMap(t)
	bad := spawn(t, m, "Door", 1, 1)
	good := spawn(t, m, "Door", 2, 2)
	pbad, _ := BehaviourOf[*recorder](bad)
	pgood, _ := BehaviourOf[*recorder](good)
	pbad.onTick = func(*recorder) { panic("boom") }

	require.NotPanics(t, func() { runTicks(m, 0, 3) })
	assert.Len(t, pgood.ticks, 3)
	assert.Equal(t, 3, m.Ticks.Panics())
}
