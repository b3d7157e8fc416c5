package world

import (
	"fmt"

	"github.com/woomy144/Rimworld/internal/core/ecs"
)

type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetThing
	TargetCell
)

// Target names either a thing (by handle) or a cell. Targets are plain
// values and never own what they point at; resolve a thing target through
// Map.Thing. The zero Target points at nothing.
type Target struct {
	Kind  TargetKind   `json:"kind"`
	Thing ecs.EntityID `json:"thing,omitempty"`
	Cell  Cell         `json:"cell"`
}

func ThingTarget(t *Thing) Target {
	if t == nil {
		return Target{}
	}
	return Target{Kind: TargetThing, Thing: t.ID}
}

func CellTarget(c Cell) Target {
	return Target{Kind: TargetCell, Cell: c}
}

func (t Target) HasThing() bool { return t.Kind == TargetThing }
func (t Target) IsValid() bool  { return t.Kind != TargetNone }

func (t Target) String() string {
	switch t.Kind {
	case TargetThing:
		return fmt.Sprintf("thing#%d", uint64(t.Thing))
	case TargetCell:
		return t.Cell.String()
	}
	return "null"
}
