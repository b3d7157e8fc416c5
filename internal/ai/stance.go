package ai

import "github.com/woomy144/Rimworld/internal/world"

// StanceTracker holds what the pawn's body is doing apart from walking:
// a busy cooldown (after an attack, while a door swings open) or a verb
// warming up. Toils with CompleteFinishedBusy wait on it.
type StanceTracker struct {
	pawn      *Pawn
	busyTicks int
	warmup    *warmup
}

type warmup struct {
	verb      *Verb
	target    world.Target
	ticksLeft int
}

// Busy reports whether the pawn is in a cooldown or warming up a verb.
func (s *StanceTracker) Busy() bool { return s.busyTicks > 0 || s.warmup != nil }

func (s *StanceTracker) BusyTicks() int { return s.busyTicks }

// SetBusy keeps the pawn busy for at least ticks more ticks.
func (s *StanceTracker) SetBusy(ticks int) {
	s.busyTicks = max(s.busyTicks, ticks)
}

// CancelBusy drops the cooldown and any pending warmup.
func (s *StanceTracker) CancelBusy() {
	s.busyTicks = 0
	s.warmup = nil
}

// Warming reports whether a verb is waiting to fire.
func (s *StanceTracker) Warming() bool { return s.warmup != nil }

func (s *StanceTracker) beginWarmup(v *Verb, target world.Target) {
	s.warmup = &warmup{verb: v, target: target, ticksLeft: v.WarmupTicks}
}

func (s *StanceTracker) Tick() {
	if w := s.warmup; w != nil {
		w.ticksLeft--
		if w.ticksLeft > 0 {
			return
		}
		s.warmup = nil
		if s.pawn.thing.Spawned() && w.verb.targetStillValid(s.pawn, w.target) {
			w.verb.fire(s.pawn, w.target)
		}
		return
	}
	if s.busyTicks > 0 {
		s.busyTicks--
	}
}
