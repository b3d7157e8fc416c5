package world

import (
	"fmt"

	"github.com/woomy144/Rimworld/internal/core/ecs"
	"github.com/woomy144/Rimworld/internal/data"
)

type lifeState uint8

const (
	stateUnspawned lifeState = iota
	stateSpawned
	stateDestroyed
)

// DestroyMode tells destroy and despawn hooks why a thing is leaving.
type DestroyMode uint8

const (
	DestroyVanish DestroyMode = iota
	DestroyKill
	DestroyCancel
)

func (m DestroyMode) String() string {
	switch m {
	case DestroyKill:
		return "kill"
	case DestroyCancel:
		return "cancel"
	}
	return "vanish"
}

type DamageKind uint8

const (
	DamageBlunt DamageKind = iota
	DamageCut
	DamageBullet
	DamageFlame
	DamageRotting
	DamageExtinguish
)

type Damage struct {
	Kind       DamageKind
	Amount     int
	Instigator ecs.EntityID
}

// Thing is any spatial object the map owns: items, buildings, plants,
// fires, projectiles and pawns. Class-specific state lives in the
// behaviour value built by the map's ClassTable.
type Thing struct {
	ID         ecs.EntityID
	Def        *data.ThingDef
	Position   Cell
	StackCount int
	HitPoints  int
	Faction    string

	forbidden  bool
	state      lifeState
	owner      *Map
	hashOffset int
	behaviour  any
	comps      []Comp
}

func (t *Thing) Spawned() bool   { return t.state == stateSpawned }
func (t *Thing) Destroyed() bool { return t.state == stateDestroyed }

// Map returns the map the thing is spawned on, or nil.
func (t *Thing) Map() *Map {
	if t.state != stateSpawned {
		return nil
	}
	return t.owner
}

// HashOffset is the per-thing stagger used by interval checks.
func (t *Thing) HashOffset() int { return t.hashOffset }

// IsHashIntervalTick reports whether periodic work with the given interval
// is due for this thing on the current map tick.
func (t *Thing) IsHashIntervalTick(interval int) bool {
	return IsHashIntervalTick(t.owner.TicksGame(), t.hashOffset, interval)
}

// Behaviour returns the class behaviour value, or nil for plain things.
func (t *Thing) Behaviour() any { return t.behaviour }

// BehaviourOf returns the thing's behaviour as T.
func BehaviourOf[T any](t *Thing) (T, bool) {
	var zero T
	if t == nil {
		return zero, false
	}
	b, ok := t.behaviour.(T)
	return b, ok
}

func (t *Thing) Label() string {
	if t.Def.Stackable() && t.StackCount > 1 {
		return fmt.Sprintf("%s x%d", t.Def.Label, t.StackCount)
	}
	return t.Def.Label
}

func (t *Thing) String() string {
	return fmt.Sprintf("%s#%d", t.Def.Name, uint64(t.ID))
}

func (t *Thing) IsForbidden() bool      { return t.forbidden }
func (t *Thing) SetForbidden(f bool)    { t.forbidden = f }
func (t *Thing) Comps() []Comp          { return t.comps }
func (t *Thing) Class() data.ThingClass { return t.Def.Class }

// IsBurning reports whether a fire shares the thing's cell.
func (t *Thing) IsBurning() bool {
	m := t.Map()
	return m != nil && m.FireAt(t.Position) != nil
}

// TakeDamage applies damage and destroys the thing when its hit points run
// out. The returned amount is what was actually dealt.
func (t *Thing) TakeDamage(d Damage) int {
	if t.Destroyed() || d.Amount <= 0 {
		return 0
	}
	if h, ok := t.behaviour.(DamageHook); ok && h.PreApplyDamage(&d) {
		return 0
	}
	if d.Kind == DamageExtinguish || t.Def.MaxHitPoints <= 0 {
		return 0
	}
	dealt := min(d.Amount, t.HitPoints)
	t.HitPoints -= d.Amount
	if h, ok := t.behaviour.(PostDamageHook); ok {
		h.PostApplyDamage(d)
	}
	if t.HitPoints <= 0 && !t.Destroyed() {
		t.HitPoints = 0
		t.Destroy(DestroyKill)
	}
	return dealt
}

// Destroy is terminal. Spawned things are despawned first; a second call
// is ignored.
func (t *Thing) Destroy(mode DestroyMode) {
	t.owner.Destroy(t, mode)
}

// DeSpawn removes the thing from the map without destroying it.
func (t *Thing) DeSpawn(mode DestroyMode) {
	t.owner.DeSpawn(t, mode)
}

// CanStackWith reports whether o can merge into t.
func (t *Thing) CanStackWith(o *Thing) bool {
	return t != o && !t.Destroyed() && !o.Destroyed() &&
		t.Def == o.Def && t.Def.Stackable()
}

// SplitOff takes count units into a new unspawned thing. Taking the whole
// stack despawns and returns t itself.
func (t *Thing) SplitOff(count int) *Thing {
	if count >= t.StackCount {
		if t.Spawned() {
			t.DeSpawn(DestroyVanish)
		}
		return t
	}
	piece := t.owner.newThing(t.Def)
	piece.StackCount = count
	piece.HitPoints = t.HitPoints
	piece.Faction = t.Faction
	t.StackCount -= count
	for _, c := range t.comps {
		if s, ok := c.(stackComp); ok {
			s.PostSplitOff(piece)
		}
	}
	return piece
}

// TryAbsorbStack merges as much of o into t as the stack limit allows and
// reports whether o was used up (and destroyed).
func (t *Thing) TryAbsorbStack(o *Thing) bool {
	if !t.CanStackWith(o) {
		return false
	}
	count := min(o.StackCount, t.Def.StackLimit-t.StackCount)
	if count <= 0 {
		return false
	}
	for _, c := range t.comps {
		if s, ok := c.(stackComp); ok {
			s.PreAbsorbStack(o, count)
		}
	}
	t.HitPoints = (t.HitPoints*t.StackCount + o.HitPoints*count) / (t.StackCount + count)
	t.StackCount += count
	o.StackCount -= count
	if o.StackCount <= 0 {
		o.Destroy(DestroyVanish)
		return true
	}
	return false
}

func (t *Thing) tickComps(interval int) {
	for _, c := range t.comps {
		if t.Destroyed() {
			return
		}
		c.CompTick(interval)
	}
}
