package ai

import "github.com/woomy144/Rimworld/internal/world"

// EquipmentTracker holds the pawn's primary weapon.
type EquipmentTracker struct {
	pawn    *Pawn
	Primary *world.Thing
}

// Equip takes one unit of weapon as the primary, dropping the previous
// one where the pawn stands.
func (e *EquipmentTracker) Equip(weapon *world.Thing) bool {
	if weapon == nil || weapon.Destroyed() || weapon.Def.Weapon == nil {
		return false
	}
	if m := e.pawn.Map(); e.Primary != nil && m != nil {
		e.DropPrimary(m, e.pawn.Position())
	}
	e.Primary = weapon.SplitOff(1)
	return true
}

// DropPrimary puts the primary weapon on the map at or near cell.
func (e *EquipmentTracker) DropPrimary(m *world.Map, cell world.Cell) (*world.Thing, bool) {
	if e.Primary == nil {
		return nil, false
	}
	placed, ok := m.TryPlaceThing(e.Primary, cell)
	if !ok {
		e.Primary.Destroy(world.DestroyVanish)
	}
	e.Primary = nil
	return placed, ok
}

// PrimaryVerb is the attack the pawn makes with what it holds.
func (e *EquipmentTracker) PrimaryVerb() *Verb { return VerbFor(e.Primary) }
