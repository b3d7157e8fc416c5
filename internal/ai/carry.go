package ai

import "github.com/woomy144/Rimworld/internal/world"

// CarryTracker holds the one stack a pawn carries in its hands. The
// carried thing is unspawned while held.
type CarryTracker struct {
	pawn    *Pawn
	Carried *world.Thing
}

// TryStartCarry picks up count units of t, or the whole stack for a
// negative count, merging into what is already carried. It returns the
// number of units taken.
func (c *CarryTracker) TryStartCarry(t *world.Thing, count int) int {
	if t == nil || t.Destroyed() {
		return 0
	}
	if count < 0 || count > t.StackCount {
		count = t.StackCount
	}
	if c.Carried != nil {
		if !c.Carried.CanStackWith(t) {
			return 0
		}
		count = min(count, c.Carried.Def.StackLimit-c.Carried.StackCount)
	}
	if count <= 0 {
		return 0
	}
	piece := t.SplitOff(count)
	if c.Carried == nil {
		c.Carried = piece
		return count
	}
	c.Carried.TryAbsorbStack(piece)
	return count
}

// TryDropCarried places the carried stack at or near cell.
func (c *CarryTracker) TryDropCarried(cell world.Cell) (*world.Thing, bool) {
	if c.Carried == nil {
		return nil, false
	}
	placed, ok := c.pawn.Map().TryPlaceThing(c.Carried, cell)
	if ok {
		c.Carried = nil
	}
	return placed, ok
}

// TryPlaceCarriedAt places the carried stack exactly in cell, merging into
// a stack already there. Leftover units stay in hand.
func (c *CarryTracker) TryPlaceCarriedAt(cell world.Cell) (*world.Thing, bool) {
	if c.Carried == nil {
		return nil, false
	}
	placed, ok := c.pawn.Map().TryPlaceThingAt(c.Carried, cell)
	if ok {
		c.Carried = nil
	}
	return placed, ok
}

func (c *CarryTracker) DestroyCarried() {
	if c.Carried != nil {
		c.Carried.Destroy(world.DestroyVanish)
		c.Carried = nil
	}
}
