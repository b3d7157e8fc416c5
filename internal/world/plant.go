package world

import (
	"encoding/json"
	"math"

	"github.com/woomy144/Rimworld/internal/data"
)

const (
	PlantBaseGrowth             = 0.05
	plantBaseDyingDamagePerTick = 1.0 / 200
)

// Plant grows on its long tick, scaled by cell fertility and the
// temperature growth factor, and starts dying past its lifespan.
type Plant struct {
	thing  *Thing
	props  *data.PlantProps
	Growth float64
	Age    int
}

func newPlant(t *Thing) any {
	return &Plant{thing: t, props: t.Def.Plant, Growth: PlantBaseGrowth}
}

// GrowthRate is the fraction of the nominal speed the plant grows at now.
func (p *Plant) GrowthRate() float64 {
	m := p.thing.Map()
	if m == nil {
		return 0
	}
	fertility := 1.0
	if terr := m.TerrainAt(p.thing.Position); terr != nil {
		fertility = terr.Fertility
	}
	return fertility * m.formulas.PlantGrowthFactor(m.TemperatureAt(p.thing.Position))
}

func (p *Plant) growthPerTick() float64 {
	if p.props == nil || p.props.GrowDays <= 0 {
		return 0
	}
	return 1 / (p.props.GrowDays * data.TicksPerDay) * p.GrowthRate()
}

func (p *Plant) TickLong() {
	p.Growth = math.Min(1, p.Growth+p.growthPerTick()*data.LongInterval)
	p.Age += data.LongInterval
	if p.Dying() {
		dmg := int(math.Ceil(plantBaseDyingDamagePerTick * data.LongInterval))
		p.thing.TakeDamage(Damage{Kind: DamageRotting, Amount: dmg})
	}
}

// Dying reports whether the plant has outlived its lifespan.
func (p *Plant) Dying() bool {
	return p.props != nil && p.props.LifespanDays > 0 && p.Age > p.props.LifespanTicks()
}

func (p *Plant) Mature() bool { return p.Growth >= 1 }

// Harvestable reports whether cutting now would yield anything.
func (p *Plant) Harvestable() bool {
	return p.props != nil && p.props.HarvestedThing != "" && p.Growth > p.props.HarvestMinGrowth
}

// YieldNow is the number of harvested units cutting would give now.
func (p *Plant) YieldNow() int {
	if !p.Harvestable() {
		return 0
	}
	span := 1 - p.props.HarvestMinGrowth
	factor := 1.0
	if span > 0 {
		factor = (p.Growth - p.props.HarvestMinGrowth) / span
	}
	return int(math.Round(float64(p.props.HarvestYield) * factor))
}

// PlantCollected destroys the plant and spawns its yield in its cell. It
// returns the harvested thing, or nil.
func (p *Plant) PlantCollected() *Thing {
	t := p.thing
	m := t.Map()
	if m == nil {
		return nil
	}
	pos := t.Position
	yield := p.YieldNow()
	product := ""
	if p.props != nil {
		product = p.props.HarvestedThing
	}
	t.Destroy(DestroyVanish)
	if yield <= 0 {
		return nil
	}
	item, err := m.MakeThing(product)
	if err != nil {
		return nil
	}
	item.StackCount = min(yield, item.Def.StackLimit)
	placed, ok := m.TryPlaceThing(item, pos)
	if !ok {
		return nil
	}
	return placed
}

type plantState struct {
	Growth float64 `json:"growth"`
	Age    int     `json:"age"`
}

func (p *Plant) SaveState() (json.RawMessage, error) {
	return json.Marshal(plantState{Growth: p.Growth, Age: p.Age})
}

func (p *Plant) LoadState(raw json.RawMessage) error {
	var s plantState
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	p.Growth, p.Age = s.Growth, s.Age
	return nil
}
