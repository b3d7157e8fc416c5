package system

import (
	"go.uber.org/zap"

	coresys "github.com/woomy144/Rimworld/internal/core/system"
	"github.com/woomy144/Rimworld/internal/world"
)

// Rain rates the weather can settle on.
const (
	rainClear = 0.0
	rainLight = 0.3
	rainHeavy = 0.8
)

// WeatherSystem rerolls the map's rain every interval ticks, clear weather
// dominant (~60%). Rain feeds the fire extinguish roll. The roll draws from
// the map's random source so a seed replays the same weather. Phase 2
// (PostTick).
type WeatherSystem struct {
	m         *world.Map
	log       *zap.Logger
	interval  int // 0 = fixed weather
	tickCount int
}

func NewWeatherSystem(m *world.Map, log *zap.Logger, intervalTicks int) *WeatherSystem {
	return &WeatherSystem{m: m, log: log, interval: intervalTicks}
}

func (s *WeatherSystem) Phase() coresys.Phase { return coresys.PhasePostTick }

func (s *WeatherSystem) Update(_ int) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0

	roll := s.m.Rand().Intn(10)
	rate := rainClear
	switch {
	case roll < 6:
	case roll < 8:
		rate = rainLight
	default:
		rate = rainHeavy
	}
	if rate != s.m.RainRate() {
		s.log.Debug("weather changed", zap.Float64("rain_rate", rate), zap.Int("tick", s.m.TicksGame()))
	}
	s.m.SetRainRate(rate)
}
