package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRecyclesWithNewGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	require.False(t, a.IsZero())
	assert.True(t, p.Alive(a))

	p.Destroy(a)
	assert.False(t, p.Alive(a))

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index())
	assert.NotEqual(t, a.Generation(), b.Generation())
	assert.False(t, p.Alive(a), "stale handle must not resolve")
	assert.True(t, p.Alive(b))
}

func TestPoolReserve(t *testing.T) {
	p := NewEntityPool()
	id := NewEntityID(5, 2)
	require.True(t, p.Reserve(id))
	assert.True(t, p.Alive(id))
	assert.False(t, p.Reserve(id), "already live")

	// Indices skipped by Reserve are handed out later.
	seen := map[uint32]bool{}
	for i := 0; i < 4; i++ {
		seen[p.Create().Index()] = true
	}
	assert.Equal(t, map[uint32]bool{1: true, 2: true, 3: true, 4: true}, seen)
	assert.Equal(t, uint32(6), p.Create().Index())
}

func TestHashOffsetDeterministicAndSpread(t *testing.T) {
	buckets := make(map[int]int)
	for i := uint32(1); i <= 1000; i++ {
		id := NewEntityID(i, 0)
		assert.Equal(t, id.HashOffset(), id.HashOffset())
		assert.GreaterOrEqual(t, id.HashOffset(), 0)
		buckets[id.HashOffset()%10]++
	}
	for b := 0; b < 10; b++ {
		assert.Greater(t, buckets[b], 50, "bucket %d underpopulated", b)
	}
}

func TestStoreOrderAndRemove(t *testing.T) {
	s := NewStore[int]()
	vals := []int{10, 20, 30, 40}
	for i := range vals {
		s.Set(EntityID(i+1), &vals[i])
	}
	s.Remove(EntityID(2))
	s.Remove(EntityID(99))

	var got []EntityID
	s.Each(func(id EntityID, _ *int) { got = append(got, id) })
	assert.Equal(t, []EntityID{1, 4, 3}, got)
	assert.Equal(t, 3, s.Len())

	v, ok := s.Get(4)
	require.True(t, ok)
	assert.Equal(t, 40, *v)
	assert.False(t, s.Has(2))
}

func TestWorldDefersRecycling(t *testing.T) {
	w := NewWorld()
	st := NewStore[string]()
	w.Registry().Register(st)

	id := w.CreateEntity()
	name := "fire"
	st.Set(id, &name)

	w.MarkForDestruction(id)
	assert.True(t, w.Alive(id), "still alive until flush")
	assert.Equal(t, 1, w.Pending())

	w.FlushDestroyQueue()
	assert.False(t, w.Alive(id))
	assert.False(t, st.Has(id))
	assert.Equal(t, 0, w.Pending())
}
