package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woomy144/Rimworld/internal/data"
	"github.com/woomy144/Rimworld/internal/world"
)

func totalStack(m *world.Map, def string) int {
	n := 0
	for _, th := range m.ThingsOfDef(def) {
		n += th.StackCount
	}
	return n
}

func TestHaulToStockpile(t *testing.T) {
	m := newTestMap(t, &HaulGiver{})
	m.Stockpile.AddCell(world.Cell{X: 10, Z: 10})
	p := spawnPawn(t, m, 2, 2)
	steel := spawnThing(t, m, "Steel", 5, 5)
	steel.StackCount = 30

	runTicks(m, 1, 400)
	stored := m.FirstOfClassAt(world.Cell{X: 10, Z: 10}, data.ClassItem)
	require.NotNil(t, stored)
	assert.Equal(t, "Steel", stored.Def.Name)
	assert.Equal(t, 30, stored.StackCount)
	assert.Equal(t, 30, totalStack(m, "Steel"))
	assert.Nil(t, p.Carry.Carried)
	assert.Nil(t, p.Jobs.CurJob())
	assert.Zero(t, m.Reservations.Count())
}

func TestHaulSkipsForbiddenAndStored(t *testing.T) {
	m := newTestMap(t)
	m.Stockpile.AddCell(world.Cell{X: 10, Z: 10})
	m.Stockpile.AddCell(world.Cell{X: 11, Z: 10})
	p := spawnPawn(t, m, 2, 2)
	forbidden := spawnThing(t, m, "Steel", 3, 3)
	forbidden.SetForbidden(true)
	spawnThing(t, m, "WoodLog", 10, 10)

	assert.Nil(t, (&HaulGiver{}).TryGiveJob(p))

	loose := spawnThing(t, m, "WoodLog", 6, 6)
	j := (&HaulGiver{}).TryGiveJob(p)
	require.NotNil(t, j)
	assert.Equal(t, world.ThingTarget(loose), j.TargetA)
	assert.Equal(t, cell(10, 10), j.TargetB)
	assert.Equal(t, HaulToCellStorage, j.HaulMode)
}

func TestDoBillGathersCraftsAndStores(t *testing.T) {
	m := newTestMap(t, &DoBillGiver{})
	m.Stockpile.AddCell(world.Cell{X: 15, Z: 15})
	bench := spawnThing(t, m, "CraftingSpot", 10, 10)
	b, ok := world.BehaviourOf[*world.Bench](bench)
	require.True(t, ok)
	bill, err := b.AddBill(m.Defs().Recipe("MakeKnife"), 1)
	require.NoError(t, err)

	steel := spawnThing(t, m, "Steel", 4, 4)
	steel.StackCount = 30
	wood := spawnThing(t, m, "WoodLog", 6, 4)
	wood.StackCount = 10
	p := spawnPawn(t, m, 8, 8)

	m.Tick(1)
	j := p.Jobs.CurJob()
	require.NotNil(t, j)
	assert.Equal(t, "DoBill", j.Def.Name)
	assert.Equal(t, []int{5}, j.CountQueue, "first ingredient already extracted")

	runTicks(m, 2, 2500)
	assert.Equal(t, 1, bill.Done)
	assert.False(t, bill.ShouldDoNow())

	knives := m.ThingsOfDef("Knife")
	require.Len(t, knives, 1)
	assert.Equal(t, world.Cell{X: 15, Z: 15}, knives[0].Position)
	assert.Equal(t, 5, totalStack(m, "Steel"))
	assert.Equal(t, 5, totalStack(m, "WoodLog"))
	assert.Nil(t, p.Carry.Carried)
	assert.Zero(t, m.Reservations.Count())
	assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
}

func TestDoBillWithoutIngredientsGoesStraightToBench(t *testing.T) {
	m := newTestMap(t)
	bench := spawnThing(t, m, "CraftingSpot", 10, 10)
	b, _ := world.BehaviourOf[*world.Bench](bench)
	bill, err := b.AddBill(m.Defs().Recipe("MakeKnife"), 1)
	require.NoError(t, err)
	p := spawnPawn(t, m, 10, 4)

	j := job(t, m, "DoBill", world.ThingTarget(bench))
	j.Bill = bill
	require.True(t, p.Jobs.StartJob(j, CondNone, false))

	d := p.Jobs.CurDriver()
	assert.Equal(t, "goto_bill_giver", d.CurToil().Label)
	assert.Equal(t, 8, d.CurToilIndex())
	assert.Equal(t, world.Cell{X: 10, Z: 9}, p.Pather.destCell)
	assert.Nil(t, p.Carry.Carried)
}

func TestDoBillGiverNeedsAllIngredients(t *testing.T) {
	m := newTestMap(t)
	bench := spawnThing(t, m, "CraftingSpot", 10, 10)
	b, _ := world.BehaviourOf[*world.Bench](bench)
	_, err := b.AddBill(m.Defs().Recipe("MakeKnife"), world.RepeatForever)
	require.NoError(t, err)
	p := spawnPawn(t, m, 2, 2)
	steel := spawnThing(t, m, "Steel", 4, 4)
	steel.StackCount = 20

	assert.Nil(t, (&DoBillGiver{}).TryGiveJob(p))

	more := spawnThing(t, m, "Steel", 5, 5)
	more.StackCount = 20
	spawnThing(t, m, "WoodLog", 6, 6).StackCount = 5

	j := (&DoBillGiver{}).TryGiveJob(p)
	require.NotNil(t, j)
	assert.Equal(t, []world.Target{
		world.ThingTarget(steel), world.ThingTarget(more), world.ThingTarget(m.ThingsOfDef("WoodLog")[0]),
	}, j.TargetQueueB)
	assert.Equal(t, []int{20, 5, 5}, j.CountQueue)
}

func TestCutDesignatedPlant(t *testing.T) {
	m := newTestMap(t, &CutPlantsGiver{})
	plant := spawnThing(t, m, "PotatoPlant", 5, 5)
	pl, _ := world.BehaviourOf[*world.Plant](plant)
	pl.Growth = 1
	p := spawnPawn(t, m, 5, 4)

	runTicks(m, 1, 50)
	assert.Nil(t, p.Jobs.CurJob(), "no designation, no job")

	m.Designations.Add(world.DesignateCutPlant, world.ThingTarget(plant))
	runTicks(m, 50, 250)
	assert.True(t, plant.Destroyed())
	assert.Equal(t, 11, totalStack(m, "RawPotatoes"))
	assert.Zero(t, m.Designations.Len())
	assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
}

func TestCutPlantFailsWhenUndesignated(t *testing.T) {
	m := newTestMap(t)
	plant := spawnThing(t, m, "PotatoPlant", 5, 5)
	p := spawnPawn(t, m, 5, 4)
	m.Designations.Add(world.DesignateCutPlant, world.ThingTarget(plant))

	require.True(t, p.Jobs.StartJob(job(t, m, "CutPlant", world.ThingTarget(plant)), CondNone, false))
	runTicks(m, 1, 20)
	m.Designations.Remove(world.DesignateCutPlant, world.ThingTarget(plant))
	m.Tick(20)
	assert.Equal(t, CondIncompletable, p.Jobs.LastCondition())
	assert.False(t, plant.Destroyed())
}

func TestBeatAdjacentFire(t *testing.T) {
	m := newTestMap(t, &BeatFireGiver{})
	p := spawnPawn(t, m, 5, 5)
	spawnThing(t, m, "WoodLog", 6, 5)
	fire := spawnThing(t, m, "Fire", 6, 5)

	runTicks(m, 1, 10)
	assert.True(t, fire.Destroyed())
	assert.Equal(t, CondSucceeded, p.Jobs.LastCondition())
}

func TestWaitingPawnBeatsFireThenResumes(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 5, 5)
	w := job(t, m, "Wait", cell(5, 5))
	require.True(t, p.Jobs.StartJob(w, CondNone, false))

	spawnThing(t, m, "WoodLog", 5, 6)
	fire := spawnThing(t, m, "Fire", 5, 6)
	sawBeat := false
	for tick := 1; tick < 40; tick++ {
		m.Tick(tick)
		if j := p.Jobs.CurJob(); j != nil && j.Def.Name == "BeatFire" {
			sawBeat = true
		}
	}
	assert.True(t, sawBeat)
	assert.True(t, fire.Destroyed())
	assert.Same(t, w, p.Jobs.CurJob())
}

func TestEquipWeapon(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)
	knife := spawnThing(t, m, "Knife", 5, 5)

	require.True(t, p.Jobs.StartJob(job(t, m, "Equip", world.ThingTarget(knife)), CondNone, false))
	runTicks(m, 1, 100)
	assert.Same(t, knife, p.Equipment.Primary)
	assert.False(t, knife.Spawned())

	v := p.Equipment.PrimaryVerb()
	assert.Equal(t, 12, v.Damage)
	assert.Equal(t, world.DamageCut, v.Kind)
	assert.False(t, v.Ranged())
}

func TestKilledPawnDropsWeapon(t *testing.T) {
	m := newTestMap(t)
	p := spawnPawn(t, m, 2, 2)
	knife, err := m.MakeThing("Knife")
	require.NoError(t, err)
	require.True(t, p.Equipment.Equip(knife))

	p.Thing().Destroy(world.DestroyKill)
	assert.True(t, knife.Spawned())
	assert.Equal(t, world.Cell{X: 2, Z: 2}, knife.Position)
}

func TestAttackStaticStopsAfterBudget(t *testing.T) {
	m := newTestMap(t)
	a := spawnPawn(t, m, 5, 5)
	b := spawnPawn(t, m, 6, 5)
	a.Thing().Faction, b.Thing().Faction = "Colony", "Pirates"

	j := job(t, m, "AttackStatic", world.ThingTarget(b.Thing()))
	j.MaxNumStaticAttacks = 3
	require.True(t, a.Jobs.StartJob(j, CondNone, false))

	runTicks(m, 1, 250)
	assert.Equal(t, 100-3*fistVerb.Damage, b.Thing().HitPoints)
	assert.Equal(t, CondSucceeded, a.Jobs.LastCondition())
}

func TestKillChasesAndFinishes(t *testing.T) {
	m := newTestMap(t)
	a := spawnPawn(t, m, 5, 5)
	b := spawnPawn(t, m, 8, 5)
	b.Thing().HitPoints = 10

	require.True(t, a.Jobs.StartJob(job(t, m, "Kill", world.ThingTarget(b.Thing())), CondNone, false))
	runTicks(m, 1, 400)
	assert.True(t, b.Thing().Destroyed())
	assert.Equal(t, world.Cell{X: 7, Z: 5}, a.Position())
	assert.Equal(t, CondSucceeded, a.Jobs.LastCondition())
}

func TestRangedVerbLaunchesProjectile(t *testing.T) {
	m := newTestMap(t)
	a := spawnPawn(t, m, 5, 5)
	b := spawnPawn(t, m, 10, 5)
	pistol, err := m.MakeThing("Pistol")
	require.NoError(t, err)
	require.True(t, a.Equipment.Equip(pistol))

	v := a.Equipment.PrimaryVerb()
	require.True(t, v.Ranged())
	require.True(t, v.TryStartCastOn(a, world.ThingTarget(b.Thing())))
	assert.True(t, a.Stances.Warming())

	runTicks(m, 1, 60)
	assert.Equal(t, 100-9, b.Thing().HitPoints)
	assert.Empty(t, m.ThingsOfDef("Bullet"))
}

func TestWaitCombatAttacksAdjacentHostile(t *testing.T) {
	m := newTestMap(t)
	a := spawnPawn(t, m, 5, 5)
	b := spawnPawn(t, m, 6, 6)
	a.Thing().Faction, b.Thing().Faction = "Colony", "Pirates"

	require.True(t, a.Jobs.StartJob(job(t, m, "Wait_Combat", cell(5, 5)), CondNone, false))
	runTicks(m, 1, 10)
	require.NotNil(t, a.Jobs.CurJob())
	assert.Equal(t, "AttackStatic", a.Jobs.CurJob().Def.Name)
	assert.Less(t, b.Thing().HitPoints, 100)
}
