package system

import (
	coresys "github.com/woomy144/Rimworld/internal/core/system"
	"github.com/woomy144/Rimworld/internal/world"
)

// CleanupSystem recycles the handles of things destroyed during the tick.
// Phase 4 (Cleanup).
type CleanupSystem struct {
	m *world.Map
}

func NewCleanupSystem(m *world.Map) *CleanupSystem {
	return &CleanupSystem{m: m}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ int) {
	s.m.FlushDestroyed()
}
