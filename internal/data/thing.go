package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ThingDef is the immutable template shared by every thing of one kind.
type ThingDef struct {
	Name         string
	Label        string
	Class        ThingClass
	Ticker       TickerType
	Passability  Passability
	MaxHitPoints int
	StackLimit   int     // 1 = not stackable
	Flammability float64 // 0 = will not burn
	Haulable     bool
	Rottable     *RottableProps
	Lifespan     *LifespanProps
	Plant        *PlantProps
	Projectile   *ProjectileProps
	Weapon       *WeaponProps
	Interaction  *CellOffset // bench interaction cell relative to position
}

// Stackable reports whether more than one unit can share a thing.
func (d *ThingDef) Stackable() bool {
	return d.StackLimit > 1
}

// Burnable reports whether fire can damage things of this def.
func (d *ThingDef) Burnable() bool {
	return d.Flammability >= 0.01
}

type RottableProps struct {
	DaysToRotStart   float64
	DaysToDessicated float64
	RotDamagePerDay  float64
	RotDestroys      bool
}

// TicksToRotStart converts the day-based threshold to rot progress ticks.
func (p *RottableProps) TicksToRotStart() int {
	return int(p.DaysToRotStart * TicksPerDay)
}

func (p *RottableProps) TicksToDessicated() int {
	return int(p.DaysToDessicated * TicksPerDay)
}

type LifespanProps struct {
	LifespanTicks int
}

type PlantProps struct {
	GrowDays         float64
	LifespanDays     float64
	HarvestMinGrowth float64
	HarvestedThing   string
	HarvestYield     int
}

// LifespanTicks returns the age after which the plant starts dying.
func (p *PlantProps) LifespanTicks() int {
	return int(p.LifespanDays * TicksPerDay)
}

type ProjectileProps struct {
	Speed  float64 // cells per tick
	Damage int
}

// WeaponProps describes the verb a pawn gets by equipping the thing. A
// weapon with a projectile is ranged; otherwise it is used in melee.
type WeaponProps struct {
	Damage        int
	DamageKind    string // blunt, cut or bullet
	Range         float64
	WarmupTicks   int
	CooldownTicks int
	Projectile    string
}

// Ranged reports whether the weapon fires a projectile.
func (w *WeaponProps) Ranged() bool { return w.Projectile != "" }

type CellOffset struct {
	X, Z int
}

// --- YAML loading ---

type thingEntry struct {
	Name         string  `yaml:"name"`
	Label        string  `yaml:"label"`
	Class        string  `yaml:"class"`
	Ticker       string  `yaml:"ticker"`
	Passability  string  `yaml:"passability"`
	MaxHitPoints int     `yaml:"max_hit_points"`
	StackLimit   int     `yaml:"stack_limit"`
	Flammability float64 `yaml:"flammability"`
	Haulable     bool    `yaml:"haulable"`
	Rottable     *struct {
		DaysToRotStart   float64 `yaml:"days_to_rot_start"`
		DaysToDessicated float64 `yaml:"days_to_dessicated"`
		RotDamagePerDay  float64 `yaml:"rot_damage_per_day"`
		RotDestroys      bool    `yaml:"rot_destroys"`
	} `yaml:"rottable"`
	LifespanTicks int `yaml:"lifespan_ticks"`
	Plant         *struct {
		GrowDays         float64 `yaml:"grow_days"`
		LifespanDays     float64 `yaml:"lifespan_days"`
		HarvestMinGrowth float64 `yaml:"harvest_min_growth"`
		HarvestedThing   string  `yaml:"harvested_thing"`
		HarvestYield     int     `yaml:"harvest_yield"`
	} `yaml:"plant"`
	Projectile *struct {
		Speed  float64 `yaml:"speed"`
		Damage int     `yaml:"damage"`
	} `yaml:"projectile"`
	Weapon *struct {
		Damage        int     `yaml:"damage"`
		DamageKind    string  `yaml:"damage_kind"`
		Range         float64 `yaml:"range"`
		WarmupTicks   int     `yaml:"warmup_ticks"`
		CooldownTicks int     `yaml:"cooldown_ticks"`
		Projectile    string  `yaml:"projectile"`
	} `yaml:"weapon"`
	Interaction *struct {
		X int `yaml:"x"`
		Z int `yaml:"z"`
	} `yaml:"interaction_cell"`
}

type thingListFile struct {
	Things []thingEntry `yaml:"things"`
}

// LoadThingDefs loads thing definitions from YAML.
func LoadThingDefs(path string) ([]*ThingDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read things: %w", err)
	}
	return parseThingDefs(raw)
}

func parseThingDefs(raw []byte) ([]*ThingDef, error) {
	var f thingListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse things: %w", err)
	}
	defs := make([]*ThingDef, 0, len(f.Things))
	for i := range f.Things {
		d, err := f.Things[i].toDef()
		if err != nil {
			return nil, fmt.Errorf("thing %q: %w", f.Things[i].Name, err)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

func (e *thingEntry) toDef() (*ThingDef, error) {
	class, ok := thingClasses[e.Class]
	if !ok {
		return nil, fmt.Errorf("unknown class %q", e.Class)
	}
	ticker, ok := tickerTypes[e.Ticker]
	if !ok {
		return nil, fmt.Errorf("unknown ticker %q", e.Ticker)
	}
	pass, ok := passabilities[e.Passability]
	if !ok {
		return nil, fmt.Errorf("unknown passability %q", e.Passability)
	}
	d := &ThingDef{
		Name:         e.Name,
		Label:        e.Label,
		Class:        class,
		Ticker:       ticker,
		Passability:  pass,
		MaxHitPoints: e.MaxHitPoints,
		StackLimit:   e.StackLimit,
		Flammability: e.Flammability,
		Haulable:     e.Haulable,
	}
	if d.Label == "" {
		d.Label = d.Name
	}
	if d.StackLimit < 1 {
		d.StackLimit = 1
	}
	if r := e.Rottable; r != nil {
		d.Rottable = &RottableProps{
			DaysToRotStart:   r.DaysToRotStart,
			DaysToDessicated: r.DaysToDessicated,
			RotDamagePerDay:  r.RotDamagePerDay,
			RotDestroys:      r.RotDestroys,
		}
	}
	if e.LifespanTicks > 0 {
		d.Lifespan = &LifespanProps{LifespanTicks: e.LifespanTicks}
	}
	if p := e.Plant; p != nil {
		d.Plant = &PlantProps{
			GrowDays:         p.GrowDays,
			LifespanDays:     p.LifespanDays,
			HarvestMinGrowth: p.HarvestMinGrowth,
			HarvestedThing:   p.HarvestedThing,
			HarvestYield:     p.HarvestYield,
		}
	}
	if p := e.Projectile; p != nil {
		d.Projectile = &ProjectileProps{Speed: p.Speed, Damage: p.Damage}
	}
	if w := e.Weapon; w != nil {
		d.Weapon = &WeaponProps{
			Damage:        w.Damage,
			DamageKind:    w.DamageKind,
			Range:         w.Range,
			WarmupTicks:   w.WarmupTicks,
			CooldownTicks: w.CooldownTicks,
			Projectile:    w.Projectile,
		}
		if d.Weapon.DamageKind == "" {
			d.Weapon.DamageKind = "blunt"
		}
	}
	if c := e.Interaction; c != nil {
		d.Interaction = &CellOffset{X: c.X, Z: c.Z}
	}
	return d, nil
}
