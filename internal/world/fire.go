package world

import (
	"encoding/json"
	"math"

	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/data"
)

const (
	FireDefName  = "Fire"
	SparkDefName = "Spark"

	MinFireSize = 0.1
	MaxFireSize = 1.75

	fireComplexCalcsInterval     = 150
	fireBaseGrowthPerTick        = 0.00055
	fireMinSizeForSpark          = 1.0
	fireMinSizeForIgniteMovables = 0.4
	fireSkyExtinguishDamage      = 10
	fireAdjacentSpreadChance     = 0.8
)

// Fire burns whatever shares its cell, grows with available fuel and
// spreads once large. Expensive work runs every fireComplexCalcsInterval
// ticks on the fire's hash offset.
type Fire struct {
	thing            *Thing
	Size             float64
	TicksSinceSpawn  int
	ticksSinceSpread int
	flammabilityMax  float64
}

func newFire(t *Thing) any {
	return &Fire{thing: t, Size: MinFireSize, flammabilityMax: 0.5}
}

func (f *Fire) spreadInterval() float64 {
	return math.Max(75, 150-(f.Size-1)*40)
}

func (f *Fire) SpawnSetup(m *Map, respawningAfterLoad bool) {
	f.ticksSinceSpread = int(f.spreadInterval() * m.Rand().Float64())
}

func (f *Fire) Tick() {
	f.TicksSinceSpawn++
	if f.Size > fireMinSizeForSpark {
		f.ticksSinceSpread++
		if float64(f.ticksSinceSpread) >= f.spreadInterval() {
			f.trySpread()
			f.ticksSinceSpread = 0
		}
	}
	if f.thing.Spawned() && f.thing.IsHashIntervalTick(fireComplexCalcsInterval) {
		f.doComplexCalcs()
	}
}

func (f *Fire) doComplexCalcs() {
	t := f.thing
	m := t.Map()
	var flammables []*Thing
	f.flammabilityMax = 0
	terr := m.TerrainAt(t.Position)
	if terr == nil || !terr.ExtinguishesFire {
		if terr != nil {
			f.flammabilityMax = terr.Flammability
		}
		for _, ct := range m.ThingsAt(t.Position) {
			if ct == t || ct.Def.Class == data.ClassFire || !ct.Def.Burnable() {
				continue
			}
			flammables = append(flammables, ct)
			f.flammabilityMax = math.Max(f.flammabilityMax, ct.Def.Flammability)
		}
	}

	if f.flammabilityMax < 0.01 {
		t.Destroy(DestroyVanish)
		return
	}

	if len(flammables) > 0 {
		damagee := flammables[m.Rand().Intn(len(flammables))]
		if f.Size >= fireMinSizeForIgniteMovables || damagee.Def.Class != data.ClassPawn {
			damagee.TakeDamage(Damage{
				Kind:       DamageFlame,
				Amount:     m.formulas.FireDamage(f.Size, fireComplexCalcsInterval),
				Instigator: t.ID,
			})
		}
	}

	// Damage can end this fire (an exploding or collapsing fuel source).
	if !t.Spawned() {
		return
	}

	f.Size = math.Min(MaxFireSize, f.Size+fireBaseGrowthPerTick*f.flammabilityMax*fireComplexCalcsInterval)

	if m.RainRate() > 0.01 {
		t.TakeDamage(Damage{Kind: DamageExtinguish, Amount: fireSkyExtinguishDamage})
	}
}

func (f *Fire) trySpread() {
	t := f.thing
	m := t.Map()
	if m == nil {
		return
	}
	rng := m.Rand()
	adjacent := rng.Float64() < fireAdjacentSpreadChance
	var dest Cell
	if adjacent {
		dest = t.Position.Add(Adjacent8[rng.Intn(len(Adjacent8))])
	} else {
		dest = t.Position.Add(Ring2[rng.Intn(len(Ring2))])
	}
	if !m.InBounds(dest) {
		return
	}
	if rng.Float64() >= m.ChanceToStartFireIn(dest) {
		return
	}
	if adjacent {
		m.TryStartFireIn(dest, MinFireSize)
		return
	}
	spark, err := m.SpawnNew(SparkDefName, t.Position)
	if err != nil {
		m.log.Debug("spark spawn failed", zap.Error(err))
		return
	}
	if p, ok := BehaviourOf[*Projectile](spark); ok {
		p.Launch(t, CellTarget(dest))
	}
}

// PreApplyDamage absorbs all damage; extinguishing shrinks the fire and
// puts it out below MinFireSize.
func (f *Fire) PreApplyDamage(d *Damage) bool {
	if d.Kind == DamageExtinguish {
		f.Size -= float64(d.Amount) / 100
		if f.Size <= MinFireSize {
			f.thing.Destroy(DestroyVanish)
		}
	}
	return true
}

type fireState struct {
	Size            float64 `json:"size"`
	TicksSinceSpawn int     `json:"ticks_since_spawn"`
}

func (f *Fire) SaveState() (json.RawMessage, error) {
	return json.Marshal(fireState{Size: f.Size, TicksSinceSpawn: f.TicksSinceSpawn})
}

func (f *Fire) LoadState(raw json.RawMessage) error {
	var s fireState
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	f.Size, f.TicksSinceSpawn = s.Size, s.TicksSinceSpawn
	return nil
}

// ChanceToStartFireIn is the fuel available in c: the highest
// flammability of its terrain and burnable things. Cells already burning
// or covered by extinguishing terrain return 0.
func (m *Map) ChanceToStartFireIn(c Cell) float64 {
	if !m.InBounds(c) || m.FireAt(c) != nil {
		return 0
	}
	terr := m.TerrainAt(c)
	if terr != nil && terr.ExtinguishesFire {
		return 0
	}
	chance := 0.0
	if terr != nil {
		chance = terr.Flammability
	}
	for _, t := range m.ThingsAt(c) {
		if t.Def.Burnable() && t.Def.Class != data.ClassPawn {
			chance = math.Max(chance, t.Def.Flammability)
		}
	}
	return chance
}

// TryStartFireIn spawns a fire of the given size in c when it has fuel.
func (m *Map) TryStartFireIn(c Cell, size float64) (*Thing, bool) {
	if m.ChanceToStartFireIn(c) <= 0 {
		return nil, false
	}
	t, err := m.SpawnNew(FireDefName, c)
	if err != nil {
		return nil, false
	}
	if f, ok := BehaviourOf[*Fire](t); ok {
		f.Size = math.Max(size, MinFireSize)
	}
	return t, true
}
