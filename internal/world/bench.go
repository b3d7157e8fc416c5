package world

import (
	"encoding/json"
	"fmt"

	"github.com/woomy144/Rimworld/internal/data"
)

// RepeatForever marks a bill that never runs out.
const RepeatForever = -1

// Bill is one recipe order queued on a bench.
type Bill struct {
	Recipe    *data.RecipeDef
	Repeats   int // remaining iterations, or RepeatForever
	Suspended bool
	Done      int
	deleted   bool
}

// ShouldDoNow reports whether a pawn should start another iteration.
func (b *Bill) ShouldDoNow() bool {
	return !b.deleted && !b.Suspended && (b.Repeats == RepeatForever || b.Repeats > 0)
}

// DeletedOrDereferenced reports whether the bill was removed from its bench.
func (b *Bill) DeletedOrDereferenced() bool { return b.deleted }

// IterationCompleted records one finished product run.
func (b *Bill) IterationCompleted() {
	b.Done++
	if b.Repeats > 0 {
		b.Repeats--
	}
}

// Bench is a bill giver: a building where pawns work recipes while standing
// on its interaction cell.
type Bench struct {
	thing *Thing
	Bills []*Bill
}

func newBench(t *Thing) any {
	return &Bench{thing: t}
}

// AddBill queues a recipe on the bench.
func (b *Bench) AddBill(recipe *data.RecipeDef, repeats int) (*Bill, error) {
	if !recipe.UsableAt(b.thing.Def.Name) {
		return nil, fmt.Errorf("recipe %q cannot be done at %q", recipe.Name, b.thing.Def.Name)
	}
	bill := &Bill{Recipe: recipe, Repeats: repeats}
	b.Bills = append(b.Bills, bill)
	return bill, nil
}

func (b *Bench) RemoveBill(bill *Bill) {
	for i, x := range b.Bills {
		if x == bill {
			bill.deleted = true
			b.Bills = append(b.Bills[:i], b.Bills[i+1:]...)
			return
		}
	}
}

// BillIndex returns the position of bill in the queue, or -1.
func (b *Bench) BillIndex(bill *Bill) int {
	for i, x := range b.Bills {
		if x == bill {
			return i
		}
	}
	return -1
}

// InteractionCell is where a worker stands.
func (b *Bench) InteractionCell() Cell {
	if off := b.thing.Def.Interaction; off != nil {
		return b.thing.Position.Add(Cell{X: off.X, Z: off.Z})
	}
	return b.thing.Position
}

// IngredientStackCells are the cells ingredients are dropped onto: the
// bench cell when standable, otherwise the cells around the interaction
// cell.
func (b *Bench) IngredientStackCells() []Cell {
	m := b.thing.Map()
	if m == nil {
		return nil
	}
	var out []Cell
	if m.Standable(b.thing.Position) {
		out = append(out, b.thing.Position)
	}
	ic := b.InteractionCell()
	for _, off := range Adjacent8 {
		c := ic.Add(off)
		if c != b.thing.Position && m.Standable(c) {
			out = append(out, c)
		}
	}
	return out
}

// CurrentlyUsable reports whether bills can be worked right now.
func (b *Bench) CurrentlyUsable() bool {
	return b.thing.Spawned() && !b.thing.IsBurning()
}

type billState struct {
	Recipe    string `json:"recipe"`
	Repeats   int    `json:"repeats"`
	Suspended bool   `json:"suspended,omitempty"`
	Done      int    `json:"done"`
}

func (b *Bench) SaveState() (json.RawMessage, error) {
	out := make([]billState, 0, len(b.Bills))
	for _, bill := range b.Bills {
		out = append(out, billState{
			Recipe:    bill.Recipe.Name,
			Repeats:   bill.Repeats,
			Suspended: bill.Suspended,
			Done:      bill.Done,
		})
	}
	return json.Marshal(out)
}

func (b *Bench) LoadState(raw json.RawMessage) error {
	var in []billState
	if err := json.Unmarshal(raw, &in); err != nil {
		return err
	}
	b.Bills = b.Bills[:0]
	for _, s := range in {
		recipe := b.thing.owner.defs.Recipe(s.Recipe)
		if recipe == nil {
			return fmt.Errorf("bill recipe %q: %w", s.Recipe, ErrUnknownDef)
		}
		b.Bills = append(b.Bills, &Bill{
			Recipe:    recipe,
			Repeats:   s.Repeats,
			Suspended: s.Suspended,
			Done:      s.Done,
		})
	}
	return nil
}
