package world

import "fmt"

// Cell is an integer map coordinate. It carries no ownership; any number of
// things may reference the same cell.
type Cell struct {
	X, Z int
}


func (c Cell) Add(o Cell) Cell { return Cell{X: c.X + o.X, Z: c.Z + o.Z} }
func (c Cell) Sub(o Cell) Cell { return Cell{X: c.X - o.X, Z: c.Z - o.Z} }

func (c Cell) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Z)
}

// DistanceSquared is the squared euclidean distance between two cells.
func (c Cell) DistanceSquared(o Cell) int {
	dx, dz := c.X-o.X, c.Z-o.Z
	return dx*dx + dz*dz
}

// ChebyshevDistance counts king moves between two cells.
func (c Cell) ChebyshevDistance(o Cell) int {
	return max(abs(c.X-o.X), abs(c.Z-o.Z))
}

// AdjacentTo8WayOrInside reports whether o is c or one of its 8 neighbours.
func (c Cell) AdjacentTo8WayOrInside(o Cell) bool {
	return c.ChebyshevDistance(o) <= 1
}

// Adjacent8 lists the eight neighbours of the origin in a fixed order.
var Adjacent8 = [8]Cell{
	{0, 1}, {1, 1}, {1, 0}, {1, -1},
	{0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

// Cardinal4 lists the four orthogonal neighbours of the origin.
var Cardinal4 = [4]Cell{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

// Ring2 lists cells exactly two king moves from the origin.
var Ring2 = func() []Cell {
	var out []Cell
	for z := -2; z <= 2; z++ {
		for x := -2; x <= 2; x++ {
			if max(abs(x), abs(z)) == 2 {
				out = append(out, Cell{x, z})
			}
		}
	}
	return out
}()

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
