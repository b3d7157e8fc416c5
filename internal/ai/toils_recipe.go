package ai

import (
	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/world"
)

// recipeWorkSpeed is how much work a pawn does per tick.
const recipeWorkSpeed = 1.0

func billDriverOf(d *JobDriver) (*doBillDriver, bool) {
	bd, ok := d.Impl().(*doBillDriver)
	return bd, ok && d.Job.Bill != nil
}

// DoRecipeWork works the bill at the bench in TargetA until the recipe's
// work amount is spent.
func DoRecipeWork() *Toil {
	toil := NewToil("do_recipe_work")
	toil.InitAction = func() {
		d := toil.Driver()
		bd, ok := billDriverOf(d)
		if !ok {
			d.EndJobWith(CondErrored)
			return
		}
		bd.workLeft = d.Job.Bill.Recipe.WorkAmount
		d.Pawn.Pather.StopDead()
	}
	toil.TickAction = func() {
		d := toil.Driver()
		bd, ok := billDriverOf(d)
		if !ok {
			d.EndJobWith(CondErrored)
			return
		}
		bd.workLeft -= recipeWorkSpeed
		if bd.workLeft <= 0 {
			d.ReadyForNextToil()
		}
	}
	toil.CompleteMode = CompleteNever
	FailOnDespawnedNullOrForbidden(toil, TargetA)
	FailOn(toil, func() bool {
		b, ok := world.BehaviourOf[*world.Bench](toil.Driver().TargetThing(TargetA))
		return !ok || !b.CurrentlyUsable()
	})
	return toil
}

// FinishRecipeAndStartStoringProduct consumes the placed ingredients,
// makes the products and picks up the first one for storage in the cell
// it points TargetB at. Without a storage cell the products are dropped
// and the job ends Succeeded.
func FinishRecipeAndStartStoringProduct() *Toil {
	toil := NewToil("finish_recipe")
	toil.InitAction = func() {
		d := toil.Driver()
		bd, ok := billDriverOf(d)
		if !ok {
			d.EndJobWith(CondErrored)
			return
		}
		m := d.Map()
		pos := d.Pawn.Position()
		bill := d.Job.Bill

		bd.consumeIngredients(m)
		var products []*world.Thing
		for _, tc := range bill.Recipe.Products {
			th, err := m.MakeThing(tc.Def)
			if err != nil {
				m.Log().Error("recipe product", zap.String("recipe", bill.Recipe.Name), zap.Error(err))
				continue
			}
			th.StackCount = min(max(tc.Count, 1), th.Def.StackLimit)
			products = append(products, th)
		}
		bill.IterationCompleted()
		m.Log().Debug("bill iteration done",
			zap.Stringer("pawn", d.Pawn.thing),
			zap.String("recipe", bill.Recipe.Name),
			zap.Int("done", bill.Done),
		)
		if len(products) == 0 {
			d.EndJobWith(CondSucceeded)
			return
		}
		for _, extra := range products[1:] {
			dropOrVanish(m, extra, pos)
		}
		product := products[0]
		cell, found := m.ClosestStorageCellFor(product, pos, d.Pawn.Target())
		if !found || !d.Reserve(world.CellTarget(cell), 1, world.StackAll, false) ||
			d.Pawn.Carry.TryStartCarry(product, world.StackAll) == 0 {
			dropOrVanish(m, product, pos)
			d.EndJobWith(CondSucceeded)
			return
		}
		d.Job.HaulMode = HaulToCellStorage
		d.Job.SetTarget(TargetB, world.CellTarget(cell))
	}
	return toil
}

func dropOrVanish(m *world.Map, t *world.Thing, c world.Cell) {
	if _, ok := m.TryPlaceThing(t, c); !ok {
		t.Destroy(world.DestroyVanish)
	}
}
