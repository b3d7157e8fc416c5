package ai

import (
	"math"

	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/world"
)

// Verb is an attack a pawn can make: the fists, a melee weapon swing or a
// ranged shot that launches a projectile.
type Verb struct {
	Label         string
	Damage        int
	Kind          world.DamageKind
	Range         float64
	WarmupTicks   int
	CooldownTicks int
	Projectile    string // projectile def, empty for melee
}

var fistVerb = Verb{
	Label:         "fist",
	Damage:        8,
	Kind:          world.DamageBlunt,
	Range:         1.5,
	CooldownTicks: 120,
}

// VerbFor returns the attack a weapon gives, or the bare-handed attack for
// nil or a thing that is not a weapon.
func VerbFor(weapon *world.Thing) *Verb {
	if weapon == nil || weapon.Def.Weapon == nil {
		v := fistVerb
		return &v
	}
	w := weapon.Def.Weapon
	return &Verb{
		Label:         weapon.Def.Label,
		Damage:        w.Damage,
		Kind:          parseDamageKind(w.DamageKind),
		Range:         w.Range,
		WarmupTicks:   w.WarmupTicks,
		CooldownTicks: w.CooldownTicks,
		Projectile:    w.Projectile,
	}
}

func parseDamageKind(s string) world.DamageKind {
	switch s {
	case "cut":
		return world.DamageCut
	case "bullet":
		return world.DamageBullet
	case "flame":
		return world.DamageFlame
	}
	return world.DamageBlunt
}

func (v *Verb) Ranged() bool { return v.Projectile != "" }

// CanHitFrom reports whether target is within range of from.
func (v *Verb) CanHitFrom(from, target world.Cell) bool {
	return math.Sqrt(float64(from.DistanceSquared(target))) <= v.Range
}

// TryStartCastOn begins an attack on target: it fires now, or after the
// warmup. It fails while the pawn is busy or out of range.
func (v *Verb) TryStartCastOn(p *Pawn, target world.Target) bool {
	if p.Stances.Busy() || !v.targetStillValid(p, target) {
		return false
	}
	if v.WarmupTicks > 0 {
		p.Stances.beginWarmup(v, target)
		return true
	}
	v.fire(p, target)
	return true
}

func (v *Verb) targetStillValid(p *Pawn, target world.Target) bool {
	m := p.thing.Map()
	if m == nil {
		return false
	}
	cell, ok := m.TargetCell(target)
	return ok && v.CanHitFrom(p.Position(), cell)
}

func (v *Verb) fire(p *Pawn, target world.Target) {
	m := p.thing.Map()
	if m == nil {
		return
	}
	if v.Ranged() {
		shot, err := m.SpawnNew(v.Projectile, p.Position())
		if err != nil {
			m.Log().Warn("cannot launch projectile",
				zap.Stringer("pawn", p.thing),
				zap.String("projectile", v.Projectile),
				zap.Error(err),
			)
		} else if proj, ok := world.BehaviourOf[*world.Projectile](shot); ok {
			proj.Launch(p.thing, target)
		}
	} else if th := m.TargetThing(target); th != nil && th.Spawned() {
		th.TakeDamage(world.Damage{Kind: v.Kind, Amount: v.Damage, Instigator: p.ID()})
	}
	p.Stances.SetBusy(v.CooldownTicks)
}
