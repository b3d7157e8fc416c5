package scripting

import "math"

// GoFormulas computes the built-in formulas without a Lua VM. The Engine
// falls back to it when a script function is missing or fails.
type GoFormulas struct{}

var _ Formulas = GoFormulas{}

func (GoFormulas) RotRateAtTemperature(temp float64) float64 {
	switch {
	case temp >= 10:
		return 1
	case temp <= 0:
		return 0
	}
	return temp / 10
}

func (GoFormulas) PlantGrowthFactor(temp float64) float64 {
	const (
		minTemp = 0
		minOpt  = 10
		maxOpt  = 42
		maxTemp = 58
	)
	switch {
	case temp < minTemp || temp > maxTemp:
		return 0
	case temp < minOpt:
		return (temp - minTemp) / (minOpt - minTemp)
	case temp > maxOpt:
		return (maxTemp - temp) / (maxTemp - maxOpt)
	}
	return 1
}

func (GoFormulas) FireDamage(size float64, interval int) int {
	perTick := math.Max(0.0125, math.Min(0.05, 0.0125+0.0036*size))
	dmg := int(math.Floor(perTick*float64(interval) + 0.5))
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}
