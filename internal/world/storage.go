package world

import "github.com/woomy144/Rimworld/internal/data"

// StockpileZone is a set of cells where haulable items are stored.
type StockpileZone struct {
	cells []Cell
	index map[Cell]struct{}
}

func newStockpileZone() *StockpileZone {
	return &StockpileZone{index: make(map[Cell]struct{})}
}

func (z *StockpileZone) AddCell(c Cell) {
	if _, ok := z.index[c]; ok {
		return
	}
	z.index[c] = struct{}{}
	z.cells = append(z.cells, c)
}

// AddRect adds every cell of the w×h rectangle whose lower-left corner is
// origin.
func (z *StockpileZone) AddRect(origin Cell, w, h int) {
	for dz := 0; dz < h; dz++ {
		for dx := 0; dx < w; dx++ {
			z.AddCell(Cell{X: origin.X + dx, Z: origin.Z + dz})
		}
	}
}

func (z *StockpileZone) RemoveCell(c Cell) {
	if _, ok := z.index[c]; !ok {
		return
	}
	delete(z.index, c)
	for i, x := range z.cells {
		if x == c {
			z.cells = append(z.cells[:i], z.cells[i+1:]...)
			break
		}
	}
}

func (z *StockpileZone) Contains(c Cell) bool {
	_, ok := z.index[c]
	return ok
}

// Cells returns the zone's cells in insertion order.
func (z *StockpileZone) Cells() []Cell {
	return append([]Cell(nil), z.cells...)
}

func (z *StockpileZone) Len() int { return len(z.cells) }

// IsInStorage reports whether a spawned thing sits in a stockpile cell.
func (m *Map) IsInStorage(t *Thing) bool {
	return t.Spawned() && m.Stockpile.Contains(t.Position)
}

// IsValidStorageFor reports whether cell can accept t: a stockpile cell
// holding nothing but a stack t can merge into, not burning and not
// reserved by anyone other than claimant.
func (m *Map) IsValidStorageFor(c Cell, t *Thing, claimant Target) bool {
	if !m.Stockpile.Contains(c) || !m.InBounds(c) {
		return false
	}
	if m.FireAt(c) != nil {
		return false
	}
	if claimant.HasThing() && m.Reservations.IsReservedByOther(claimant.Thing, CellTarget(c)) {
		return false
	}
	for _, o := range m.ThingsAt(c) {
		if o == t {
			continue
		}
		switch o.Def.Class {
		case data.ClassItem:
			if !o.CanStackWith(t) || o.StackCount >= o.Def.StackLimit {
				return false
			}
		case data.ClassPawn, data.ClassFire:
		default:
			if o.Def.Passability == data.Impassable {
				return false
			}
		}
	}
	return true
}

// ClosestStorageCellFor returns the valid storage cell for t nearest to
// from. Ties keep zone order.
func (m *Map) ClosestStorageCellFor(t *Thing, from Cell, claimant Target) (Cell, bool) {
	best, bestDist, found := Cell{}, 0, false
	for _, c := range m.Stockpile.cells {
		if t.Spawned() && c == t.Position {
			continue
		}
		if !m.IsValidStorageFor(c, t, claimant) {
			continue
		}
		if d := from.DistanceSquared(c); !found || d < bestDist {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}
