package world

// DesignationKind is a player order attached to a thing or cell.
type DesignationKind string

const (
	DesignateCutPlant DesignationKind = "CutPlant"
	DesignateHarvest  DesignationKind = "HarvestPlant"
	DesignateHaul     DesignationKind = "Haul"
)

type Designation struct {
	Kind   DesignationKind
	Target Target
}

// DesignationManager keeps designations in insertion order. Adding an
// existing designation is a no-op.
type DesignationManager struct {
	list []Designation
}

func (dm *DesignationManager) Add(kind DesignationKind, target Target) {
	if dm.Has(kind, target) {
		return
	}
	dm.list = append(dm.list, Designation{Kind: kind, Target: target})
}

func (dm *DesignationManager) Has(kind DesignationKind, target Target) bool {
	for _, d := range dm.list {
		if d.Kind == kind && sameTarget(d.Target, target) {
			return true
		}
	}
	return false
}

func (dm *DesignationManager) Remove(kind DesignationKind, target Target) {
	dm.removeWhere(func(d Designation) bool {
		return d.Kind == kind && sameTarget(d.Target, target)
	})
}

// RemoveAllOn drops every designation targeting target.
func (dm *DesignationManager) RemoveAllOn(target Target) {
	dm.removeWhere(func(d Designation) bool { return sameTarget(d.Target, target) })
}

// OfKind returns designations of one kind in insertion order.
func (dm *DesignationManager) OfKind(kind DesignationKind) []Designation {
	var out []Designation
	for _, d := range dm.list {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func (dm *DesignationManager) All() []Designation {
	return append([]Designation(nil), dm.list...)
}

func (dm *DesignationManager) Len() int { return len(dm.list) }

func (dm *DesignationManager) removeWhere(drop func(Designation) bool) {
	kept := dm.list[:0]
	for _, d := range dm.list {
		if !drop(d) {
			kept = append(kept, d)
		}
	}
	dm.list = kept
}
