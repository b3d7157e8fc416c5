package world

import (
	"encoding/json"

	"github.com/woomy144/Rimworld/internal/data"
)

// Factory builds the behaviour value for a freshly made thing. The value
// may implement any of the hook interfaces below.
type Factory func(t *Thing) any

// Hook interfaces a behaviour can implement. The map calls them at the
// matching point of the lifecycle.
type (
	SpawnHook interface {
		SpawnSetup(m *Map, respawningAfterLoad bool)
	}
	// PostLoadHook runs after every thing of a restored snapshot is spawned.
	PostLoadHook interface {
		PostLoadInit()
	}
	Ticker interface {
		Tick()
	}
	RareTicker interface {
		TickRare()
	}
	LongTicker interface {
		TickLong()
	}
	// DespawnHook runs after the thing left every map index. m is the map
	// it was spawned on.
	DespawnHook interface {
		DeSpawned(m *Map, mode DestroyMode)
	}
	DestroyHook interface {
		Destroyed(mode DestroyMode)
	}
	// DamageHook may absorb damage before hit points change.
	DamageHook interface {
		PreApplyDamage(d *Damage) (absorbed bool)
	}
	PostDamageHook interface {
		PostApplyDamage(d Damage)
	}
	// Saver persists authoritative behaviour state.
	Saver interface {
		SaveState() (json.RawMessage, error)
		LoadState(raw json.RawMessage) error
	}
)

// ClassTable maps the closed set of thing classes to behaviour factories.
// Classes without a factory (plain items, walls) carry no behaviour.
type ClassTable struct {
	factories map[data.ThingClass]Factory
}

// NewClassTable returns a table with the map-level classes registered:
// fire, plant, door, bench and projectile.
func NewClassTable() *ClassTable {
	ct := &ClassTable{factories: make(map[data.ThingClass]Factory)}
	ct.Register(data.ClassFire, newFire)
	ct.Register(data.ClassPlant, newPlant)
	ct.Register(data.ClassDoor, newDoor)
	ct.Register(data.ClassBench, newBench)
	ct.Register(data.ClassProjectile, newProjectile)
	return ct
}

// Register binds a class to a factory, replacing any previous binding.
func (ct *ClassTable) Register(class data.ThingClass, f Factory) {
	ct.factories[class] = f
}

func (ct *ClassTable) build(t *Thing) any {
	if f, ok := ct.factories[t.Def.Class]; ok {
		return f(t)
	}
	return nil
}
