package system

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhasePreTick    Phase = iota // 0: advance the tick counter, dispatch last tick's events
	PhaseThings                  // 1: tick lists (things, pawns and their job drivers)
	PhasePostTick                // 2: derived bookkeeping (stats, weather drift)
	PhasePersist                 // 3: periodic snapshot
	PhaseCleanup                 // 4: recycle destroyed handles
)

func (p Phase) String() string {
	switch p {
	case PhasePreTick:
		return "pre_tick"
	case PhaseThings:
		return "things"
	case PhasePostTick:
		return "post_tick"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every simulation system implements. tick is the
// global game tick being simulated.
type System interface {
	Phase() Phase
	Update(tick int)
}
