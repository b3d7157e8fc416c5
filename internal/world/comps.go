package world

import (
	"encoding/json"
	"math"

	"github.com/woomy144/Rimworld/internal/data"
)

// Comp is a def-driven piece of behaviour shared across thing classes.
// CompTick receives the number of ticks elapsed since the previous call,
// which is the interval of the tick list the thing belongs to.
type Comp interface {
	Name() string
	CompTick(interval int)
}

type stackComp interface {
	PreAbsorbStack(other *Thing, count int)
	PostSplitOff(piece *Thing)
}

type compSaver interface {
	SaveState() (json.RawMessage, error)
	LoadState(raw json.RawMessage) error
}

func buildComps(t *Thing) []Comp {
	var comps []Comp
	if t.Def.Rottable != nil {
		comps = append(comps, &CompRottable{parent: t, props: t.Def.Rottable})
	}
	if t.Def.Lifespan != nil {
		comps = append(comps, &CompLifespan{parent: t, props: t.Def.Lifespan})
	}
	return comps
}

// CompOf returns the first comp of type T on the thing.
func CompOf[T Comp](t *Thing) (T, bool) {
	var zero T
	for _, c := range t.comps {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	return zero, false
}

type RotStage uint8

const (
	RotFresh RotStage = iota
	RotRotting
	RotDessicated
)

func (s RotStage) String() string {
	switch s {
	case RotRotting:
		return "rotting"
	case RotDessicated:
		return "dessicated"
	}
	return "fresh"
}

// CompRottable advances rot progress by a temperature-driven rate.
type CompRottable struct {
	parent      *Thing
	props       *data.RottableProps
	RotProgress float64
}

func (c *CompRottable) Name() string { return "rottable" }

func (c *CompRottable) Stage() RotStage {
	switch {
	case c.RotProgress < float64(c.props.TicksToRotStart()):
		return RotFresh
	case c.RotProgress < float64(c.props.TicksToDessicated()):
		return RotRotting
	}
	return RotDessicated
}

func (c *CompRottable) CompTick(interval int) {
	t := c.parent
	m := t.owner
	pos := t.Position
	if !t.Spawned() {
		pos = Cell{-1, -1}
	}
	prev := c.RotProgress
	c.RotProgress += m.formulas.RotRateAtTemperature(m.TemperatureAt(pos)) * float64(interval)

	if c.Stage() == RotRotting && c.props.RotDestroys {
		t.Destroy(DestroyVanish)
		return
	}

	newDay := math.Floor(prev/data.TicksPerDay) != math.Floor(c.RotProgress/data.TicksPerDay)
	if newDay && c.Stage() == RotRotting && c.props.RotDamagePerDay > 0 {
		t.TakeDamage(Damage{Kind: DamageRotting, Amount: int(math.Round(c.props.RotDamagePerDay))})
	}
}

// PreAbsorbStack sets rot progress to the count-weighted average.
func (c *CompRottable) PreAbsorbStack(other *Thing, count int) {
	o, ok := CompOf[*CompRottable](other)
	if !ok {
		return
	}
	share := float64(count) / float64(c.parent.StackCount+count)
	c.RotProgress += (o.RotProgress - c.RotProgress) * share
}

func (c *CompRottable) PostSplitOff(piece *Thing) {
	if o, ok := CompOf[*CompRottable](piece); ok {
		o.RotProgress = c.RotProgress
	}
}

func (c *CompRottable) SaveState() (json.RawMessage, error) {
	return json.Marshal(c.RotProgress)
}

func (c *CompRottable) LoadState(raw json.RawMessage) error {
	return json.Unmarshal(raw, &c.RotProgress)
}

// CompLifespan destroys its parent after a fixed number of ticks.
type CompLifespan struct {
	parent *Thing
	props  *data.LifespanProps
	Age    int
}

func (c *CompLifespan) Name() string { return "lifespan" }

func (c *CompLifespan) CompTick(interval int) {
	c.Age += interval
	if c.Age >= c.props.LifespanTicks {
		c.parent.Destroy(DestroyVanish)
	}
}

func (c *CompLifespan) SaveState() (json.RawMessage, error) {
	return json.Marshal(c.Age)
}

func (c *CompLifespan) LoadState(raw json.RawMessage) error {
	return json.Unmarshal(raw, &c.Age)
}
