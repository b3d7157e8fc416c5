package world

import "github.com/woomy144/Rimworld/internal/core/ecs"

// JobID identifies one job instance for the reservations it owns.
type JobID uint64

// Layer partitions reservations on the same target so unrelated uses
// (standing on a cell vs. working a bench) do not collide.
type Layer uint8

const (
	LayerDefault Layer = iota
	LayerCeiling
)

// StackAll reserves every unit of a stack.
const StackAll = -1

// Reservation is one actor's claim on a target for the duration of a job.
type Reservation struct {
	Claimant     ecs.EntityID
	Job          JobID
	Target       Target
	MaxClaimants int
	StackCount   int
	Layer        Layer
}

// ReservationManager is the map-scoped arbitration point for contested
// targets. Its state is derived; it is never persisted and is rebuilt as
// jobs restart after a load.
type ReservationManager struct {
	m            *Map
	reservations []Reservation
}

func newReservationManager(m *Map) *ReservationManager {
	return &ReservationManager{m: m}
}

func sameTarget(a, b Target) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TargetThing:
		return a.Thing == b.Thing
	case TargetCell:
		return a.Cell == b.Cell
	}
	return false
}

// CanReserve reports whether Reserve with the same arguments would succeed.
func (rm *ReservationManager) CanReserve(claimant ecs.EntityID, target Target, maxClaimants, stackCount int, layer Layer) bool {
	if !target.IsValid() {
		return false
	}
	if maxClaimants < 1 {
		maxClaimants = 1
	}
	claimants := 0
	reservedUnits := 0
	stack := rm.stackOf(target)
	var seen []ecs.EntityID
	for _, r := range rm.reservations {
		if r.Layer != layer || !sameTarget(r.Target, target) {
			continue
		}
		if r.Claimant == claimant {
			return true
		}
		// Claims on one target must agree on how many may share it.
		if r.MaxClaimants != maxClaimants {
			return false
		}
		if !containsID(seen, r.Claimant) {
			seen = append(seen, r.Claimant)
			claimants++
		}
		if r.StackCount == StackAll {
			reservedUnits += stack
		} else {
			reservedUnits += r.StackCount
		}
	}
	if claimants >= maxClaimants {
		return false
	}
	if stack > 0 {
		want := stackCount
		if want == StackAll {
			want = stack
		}
		if reservedUnits+want > stack {
			return false
		}
	}
	return true
}

// Reserve records the claim. Contention is an expected outcome and yields
// false, never an error.
func (rm *ReservationManager) Reserve(claimant ecs.EntityID, job JobID, target Target, maxClaimants, stackCount int, layer Layer) bool {
	if !rm.CanReserve(claimant, target, maxClaimants, stackCount, layer) {
		return false
	}
	for _, r := range rm.reservations {
		if r.Claimant == claimant && r.Job == job && r.Layer == layer && sameTarget(r.Target, target) {
			return true
		}
	}
	rm.reservations = append(rm.reservations, Reservation{
		Claimant:     claimant,
		Job:          job,
		Target:       target,
		MaxClaimants: max(maxClaimants, 1),
		StackCount:   stackCount,
		Layer:        layer,
	})
	return true
}

// Release drops the claim; releasing a claim that does not exist is a no-op.
func (rm *ReservationManager) Release(target Target, claimant ecs.EntityID, job JobID) {
	rm.filter(func(r Reservation) bool {
		return r.Claimant == claimant && r.Job == job && sameTarget(r.Target, target)
	})
}

// ReleaseAllForJob drops every claim owned by job.
func (rm *ReservationManager) ReleaseAllForJob(job JobID) {
	rm.filter(func(r Reservation) bool { return r.Job == job })
}

// ReleaseAllForTarget drops every claim on target, on every layer.
func (rm *ReservationManager) ReleaseAllForTarget(target Target) {
	rm.filter(func(r Reservation) bool { return sameTarget(r.Target, target) })
}

// ReleaseAllClaimedBy drops every claim held by claimant.
func (rm *ReservationManager) ReleaseAllClaimedBy(claimant ecs.EntityID) {
	rm.filter(func(r Reservation) bool { return r.Claimant == claimant })
}

// ReleaseAll clears the registry.
func (rm *ReservationManager) ReleaseAll() {
	rm.reservations = rm.reservations[:0]
}

func (rm *ReservationManager) IsReservedBy(claimant ecs.EntityID, target Target) bool {
	for _, r := range rm.reservations {
		if r.Claimant == claimant && sameTarget(r.Target, target) {
			return true
		}
	}
	return false
}

// IsReserved reports whether anyone holds a claim on target, on any layer.
func (rm *ReservationManager) IsReserved(target Target) bool {
	for _, r := range rm.reservations {
		if sameTarget(r.Target, target) {
			return true
		}
	}
	return false
}

// IsReservedByOther reports whether target is claimed by someone other
// than claimant.
func (rm *ReservationManager) IsReservedByOther(claimant ecs.EntityID, target Target) bool {
	for _, r := range rm.reservations {
		if r.Claimant != claimant && sameTarget(r.Target, target) {
			return true
		}
	}
	return false
}

// FirstReserverOf returns the earliest claimant on target.
func (rm *ReservationManager) FirstReserverOf(target Target) (ecs.EntityID, bool) {
	for _, r := range rm.reservations {
		if sameTarget(r.Target, target) {
			return r.Claimant, true
		}
	}
	return ecs.NoEntity, false
}

// ClaimantsOf counts distinct claimants on (target, layer).
func (rm *ReservationManager) ClaimantsOf(target Target, layer Layer) int {
	var seen []ecs.EntityID
	for _, r := range rm.reservations {
		if r.Layer == layer && sameTarget(r.Target, target) && !containsID(seen, r.Claimant) {
			seen = append(seen, r.Claimant)
		}
	}
	return len(seen)
}

// ForJob returns a copy of every claim owned by job.
func (rm *ReservationManager) ForJob(job JobID) []Reservation {
	var out []Reservation
	for _, r := range rm.reservations {
		if r.Job == job {
			out = append(out, r)
		}
	}
	return out
}

// All returns a copy of every active reservation.
func (rm *ReservationManager) All() []Reservation {
	return append([]Reservation(nil), rm.reservations...)
}

func (rm *ReservationManager) Count() int { return len(rm.reservations) }

func (rm *ReservationManager) filter(drop func(Reservation) bool) {
	kept := rm.reservations[:0]
	for _, r := range rm.reservations {
		if !drop(r) {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(rm.reservations); i++ {
		rm.reservations[i] = Reservation{}
	}
	rm.reservations = kept
}

func (rm *ReservationManager) stackOf(target Target) int {
	if !target.HasThing() || rm.m == nil {
		return 0
	}
	t := rm.m.Thing(target.Thing)
	if t == nil || !t.Def.Stackable() {
		return 0
	}
	return t.StackCount
}

func containsID(ids []ecs.EntityID, id ecs.EntityID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
