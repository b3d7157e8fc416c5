package world

import "github.com/woomy144/Rimworld/internal/data"

// itemCapacityAt reports whether c can take t: a standable cell holding no
// item, or holding a stack t can merge into.
func (m *Map) itemCapacityAt(c Cell, t *Thing) (stack *Thing, ok bool) {
	if !m.Standable(c) {
		return nil, false
	}
	for _, o := range m.ThingsAt(c) {
		if o.Def.Class != data.ClassItem {
			continue
		}
		if o.CanStackWith(t) && o.StackCount < o.Def.StackLimit {
			return o, true
		}
		return nil, false
	}
	return nil, true
}

// TryPlaceThingAt drops an unspawned item exactly in c, merging into a
// stack already there. It returns the thing that now holds the units.
func (m *Map) TryPlaceThingAt(t *Thing, c Cell) (*Thing, bool) {
	if t.Spawned() || t.Destroyed() {
		return nil, false
	}
	stack, ok := m.itemCapacityAt(c, t)
	if !ok {
		return nil, false
	}
	if stack != nil {
		if stack.TryAbsorbStack(t) {
			return stack, true
		}
		// Partially absorbed: what is left needs another cell.
		return nil, false
	}
	if err := m.Spawn(t, c, false); err != nil {
		return nil, false
	}
	return t, true
}

// TryPlaceThing drops an unspawned item at or near c, searching outward
// two rings. Leftover units of a partial merge keep searching.
func (m *Map) TryPlaceThing(t *Thing, c Cell) (*Thing, bool) {
	candidates := append([]Cell{c}, neighbours(c)...)
	for _, off := range Ring2 {
		candidates = append(candidates, c.Add(off))
	}
	for _, cc := range candidates {
		if !m.InBounds(cc) {
			continue
		}
		if placed, ok := m.TryPlaceThingAt(t, cc); ok {
			return placed, true
		}
	}
	return nil, false
}

func neighbours(c Cell) []Cell {
	out := make([]Cell, 0, len(Adjacent8))
	for _, off := range Adjacent8 {
		out = append(out, c.Add(off))
	}
	return out
}

// CanPlaceItemAt reports whether TryPlaceThingAt could put at least part
// of t in c.
func (m *Map) CanPlaceItemAt(c Cell, t *Thing) bool {
	_, ok := m.itemCapacityAt(c, t)
	return ok
}
