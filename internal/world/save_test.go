package world

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRestoreRoundTrip(t *testing.T) {
	m := newTestMap(t)
	runTicks(m, 0, 10)
	require.NoError(t, m.SetTerrain(Cell{1, 1}, "Grass"))
	m.Stockpile.AddRect(Cell{10, 10}, 2, 2)
	m.NextJobID()

	meat := spawn(t, m, "Meat", 2, 2)
	meat.StackCount = 7
	meat.SetForbidden(true)
	rot, _ := CompOf[*CompRottable](meat)
	rot.RotProgress = 1234

	plant := spawn(t, m, "PotatoPlant", 4, 4)
	p, _ := BehaviourOf[*Plant](plant)
	p.Growth, p.Age = 0.7, 5000
	m.Designations.Add(DesignateCutPlant, ThingTarget(plant))

	stove := spawn(t, m, "CookStove", 6, 6)
	bench, _ := BehaviourOf[*Bench](stove)
	_, err := bench.AddBill(m.Defs().Recipe("CookSimpleMeal"), 3)
	require.NoError(t, err)

	spawn(t, m, "Door", 8, 8)
	m.DoorAt(Cell{8, 8}).StartManualOpenBy(nil)

	held, err := m.MakeThing("Steel")
	require.NoError(t, err)
	held.StackCount = 12

	gone := spawn(t, m, "Steel", 9, 9)
	gone.Destroy(DestroyVanish)

	rec, err := m.Save()
	require.NoError(t, err)
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	var decoded MapRecord
	require.NoError(t, json.Unmarshal(raw, &decoded))

	r, err := Restore(Config{Defs: m.Defs(), Seed: 42}, &decoded)
	require.NoError(t, err)

	assert.Equal(t, 9, r.TicksGame())
	assert.Equal(t, m.NextJobID(), r.NextJobID())
	assert.Equal(t, int64(42), r.Seed())
	assert.Equal(t, "Grass", r.TerrainAt(Cell{1, 1}).Name)
	assert.Equal(t, "Soil", r.TerrainAt(Cell{0, 0}).Name)
	assert.Equal(t, 4, r.Stockpile.Len())
	assert.Nil(t, r.Thing(gone.ID))

	rm := r.Thing(meat.ID)
	require.NotNil(t, rm)
	assert.True(t, rm.Spawned())
	assert.Equal(t, 7, rm.StackCount)
	assert.True(t, rm.IsForbidden())
	rrot, _ := CompOf[*CompRottable](rm)
	assert.Equal(t, 1234.0, rrot.RotProgress)

	rp, ok := BehaviourOf[*Plant](r.Thing(plant.ID))
	require.True(t, ok)
	assert.Equal(t, 0.7, rp.Growth)
	assert.Equal(t, 5000, rp.Age)
	assert.True(t, r.Designations.Has(DesignateCutPlant, ThingTarget(r.Thing(plant.ID))))

	rb, _ := BehaviourOf[*Bench](r.Thing(stove.ID))
	require.Len(t, rb.Bills, 1)
	assert.Equal(t, "CookSimpleMeal", rb.Bills[0].Recipe.Name)
	assert.Equal(t, 3, rb.Bills[0].Repeats)

	assert.True(t, r.DoorAt(Cell{8, 8}).Open())

	rh := r.Thing(held.ID)
	require.NotNil(t, rh)
	assert.False(t, rh.Spawned())
	assert.Equal(t, 12, rh.StackCount)

	// Fresh handles do not collide with restored ones.
	fresh := spawn(t, r, "Steel", 0, 0)
	for _, rec := range decoded.Things {
		assert.NotEqual(t, rec.ID, fresh.ID)
	}
}

func TestRestoreRejectsUnknownDef(t *testing.T) {
	m := newTestMap(t)
	rec := &MapRecord{Width: 5, Height: 5, Things: []ThingRecord{{ID: 1, Def: "Nope"}}}
	_, err := Restore(Config{Defs: m.Defs()}, rec)
	assert.ErrorIs(t, err, ErrUnknownDef)
}
