package ai

import (
	"github.com/woomy144/Rimworld/internal/data"
	"github.com/woomy144/Rimworld/internal/world"
)

// idleWaitTicks is how long an idle pawn stands before looking for work
// again.
const idleWaitTicks = 120

// DefaultGivers returns the built-in givers, most urgent first.
func DefaultGivers() []JobGiver {
	return []JobGiver{
		&BeatFireGiver{},
		&DoBillGiver{},
		&HaulGiver{},
		&CutPlantsGiver{},
		&IdleGiver{WaitTicks: idleWaitTicks},
	}
}

func jobDef(p *Pawn, name string) *data.JobDef {
	m := p.Map()
	if m == nil {
		return nil
	}
	return m.Defs().Job(name)
}

// canReserve reports whether p could claim target right now.
func canReserve(p *Pawn, target world.Target, stackCount int) bool {
	return p.Map().Reservations.CanReserve(p.ID(), target, 1, stackCount, world.LayerDefault)
}

// BeatFireGiver sends the pawn at a fire in or next to its cell.
type BeatFireGiver struct{}

func (*BeatFireGiver) Name() string { return "beat_fire" }

func (*BeatFireGiver) TryGiveJob(p *Pawn) *Job {
	def := jobDef(p, "BeatFire")
	if def == nil {
		return nil
	}
	m := p.Map()
	for _, c := range aroundAndInside(p.Position()) {
		if fire := m.FireAt(c); fire != nil {
			return NewJob(def, world.ThingTarget(fire))
		}
	}
	return nil
}

// DoBillGiver takes the first bill that should be done on a usable bench
// whose ingredients all lie around, unforbidden and unclaimed.
type DoBillGiver struct{}

func (*DoBillGiver) Name() string { return "do_bill" }

func (*DoBillGiver) TryGiveJob(p *Pawn) *Job {
	def := jobDef(p, "DoBill")
	if def == nil {
		return nil
	}
	m := p.Map()
	for _, th := range m.ThingsOfClass(data.ClassBench) {
		bench, ok := world.BehaviourOf[*world.Bench](th)
		if !ok || th.IsForbidden() || !bench.CurrentlyUsable() || !canReserve(p, world.ThingTarget(th), world.StackAll) {
			continue
		}
		for _, bill := range bench.Bills {
			if !bill.ShouldDoNow() {
				continue
			}
			targets, counts, ok := findIngredients(p, bill.Recipe)
			if !ok {
				continue
			}
			job := NewJob(def, world.ThingTarget(th))
			job.TargetQueueB = targets
			job.CountQueue = counts
			job.Bill = bill
			job.HaulMode = HaulToBench
			return job
		}
	}
	return nil
}

// findIngredients picks stacks for every ingredient of recipe, nearest to
// the pawn first.
func findIngredients(p *Pawn, recipe *data.RecipeDef) ([]world.Target, []int, bool) {
	m := p.Map()
	var targets []world.Target
	var counts []int
	for _, need := range recipe.Ingredients {
		left := need.Count
		for _, th := range byDistance(p.Position(), m.ThingsOfDef(need.Def)) {
			if left <= 0 {
				break
			}
			if th.IsForbidden() {
				continue
			}
			take := min(left, th.StackCount)
			if !canReserve(p, world.ThingTarget(th), take) {
				continue
			}
			targets = append(targets, world.ThingTarget(th))
			counts = append(counts, take)
			left -= take
		}
		if left > 0 {
			return nil, nil, false
		}
	}
	return targets, counts, true
}

// byDistance orders things by squared distance to from, keeping spawn order
// between equals.
func byDistance(from world.Cell, things []*world.Thing) []*world.Thing {
	out := append([]*world.Thing(nil), things...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && from.DistanceSquared(out[j].Position) < from.DistanceSquared(out[j-1].Position); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// HaulGiver moves the item nearest to the pawn that sits outside storage
// into the closest free storage cell.
type HaulGiver struct{}

func (*HaulGiver) Name() string { return "haul" }

func (*HaulGiver) TryGiveJob(p *Pawn) *Job {
	def := jobDef(p, "HaulToCell")
	if def == nil {
		return nil
	}
	m := p.Map()
	if m.Stockpile.Len() == 0 {
		return nil
	}
	for _, th := range byDistance(p.Position(), m.ThingsOfClass(data.ClassItem)) {
		if !th.Def.Haulable || th.IsForbidden() || m.IsInStorage(th) {
			continue
		}
		if !canReserve(p, world.ThingTarget(th), th.StackCount) {
			continue
		}
		cell, ok := m.ClosestStorageCellFor(th, th.Position, p.Target())
		if !ok || !canReserve(p, world.CellTarget(cell), world.StackAll) {
			continue
		}
		job := NewJob(def, world.ThingTarget(th), world.CellTarget(cell))
		job.Count = th.StackCount
		job.HaulMode = HaulToCellStorage
		return job
	}
	return nil
}

// CutPlantsGiver takes the oldest cut designation the pawn can claim.
type CutPlantsGiver struct{}

func (*CutPlantsGiver) Name() string { return "cut_plants" }

func (*CutPlantsGiver) TryGiveJob(p *Pawn) *Job {
	def := jobDef(p, "CutPlant")
	if def == nil {
		return nil
	}
	m := p.Map()
	for _, des := range m.Designations.OfKind(world.DesignateCutPlant) {
		th := m.TargetThing(des.Target)
		if th == nil || !th.Spawned() || th.IsForbidden() || th.Def.Class != data.ClassPlant {
			continue
		}
		if !canReserve(p, des.Target, world.StackAll) {
			continue
		}
		return NewJob(def, des.Target)
	}
	return nil
}

// IdleGiver makes the pawn stand where it is for WaitTicks.
type IdleGiver struct {
	WaitTicks int
}

func (*IdleGiver) Name() string { return "idle" }

func (g *IdleGiver) TryGiveJob(p *Pawn) *Job {
	def := jobDef(p, "Wait")
	if def == nil {
		return nil
	}
	job := NewJob(def, world.CellTarget(p.Position()))
	job.ExpiryInterval = max(g.WaitTicks, 1)
	return job
}
