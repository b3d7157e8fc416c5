package system

import (
	"github.com/woomy144/Rimworld/internal/core/event"
	coresys "github.com/woomy144/Rimworld/internal/core/system"
)

// EventDispatchSystem swaps the bus buffers and delivers the events emitted
// during the previous tick. Phase 0 (PreTick).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhasePreTick }

func (s *EventDispatchSystem) Update(_ int) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
