package system

import (
	coresys "github.com/woomy144/Rimworld/internal/core/system"
	"github.com/woomy144/Rimworld/internal/world"
)

// ThingTickSystem advances every tick list of the map: normal things each
// tick, rare and long lists on their staggered buckets. Pawns run their job
// trackers from here. Phase 1 (Things).
type ThingTickSystem struct {
	m *world.Map
}

func NewThingTickSystem(m *world.Map) *ThingTickSystem {
	return &ThingTickSystem{m: m}
}

func (s *ThingTickSystem) Phase() coresys.Phase { return coresys.PhaseThings }

func (s *ThingTickSystem) Update(tick int) {
	s.m.Tick(tick)
}
