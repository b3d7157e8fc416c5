package scripting

import (
	"embed"
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

//go:embed lua/*.lua
var builtinScripts embed.FS

// Formulas are the tunable numbers the world simulation asks for.
type Formulas interface {
	RotRateAtTemperature(temp float64) float64
	PlantGrowthFactor(temp float64) float64
	FireDamage(size float64, interval int) int
}

// Engine wraps a single gopher-lua VM evaluating simulation formulas.
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	fallback GoFormulas
	missing  map[string]bool
}

var _ Formulas = (*Engine)(nil)

// NewEngine creates a Lua engine with the built-in formulas, then loads
// scriptsDir/core/*.lua on top so local scripts can redefine them.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, missing: make(map[string]bool)}

	if err := e.loadBuiltin(); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load builtin scripts: %w", err)
	}
	if scriptsDir != "" {
		if err := e.loadDir(filepath.Join(scriptsDir, "core")); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load core scripts: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) loadBuiltin() error {
	entries, err := builtinScripts.ReadDir("lua")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		src, err := builtinScripts.ReadFile("lua/" + entry.Name())
		if err != nil {
			return err
		}
		if err := e.vm.DoString(string(src)); err != nil {
			return fmt.Errorf("load %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk in the engine's VM. Used to redefine formulas at runtime.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// RotRateAtTemperature calls the Lua rot_rate_at_temperature function.
func (e *Engine) RotRateAtTemperature(temp float64) float64 {
	v, ok := e.callNumber("rot_rate_at_temperature", temp)
	if !ok {
		return e.fallback.RotRateAtTemperature(temp)
	}
	return clamp01(v)
}

// PlantGrowthFactor calls the Lua plant_growth_factor function.
func (e *Engine) PlantGrowthFactor(temp float64) float64 {
	v, ok := e.callNumber("plant_growth_factor", temp)
	if !ok {
		return e.fallback.PlantGrowthFactor(temp)
	}
	return clamp01(v)
}

// FireDamage calls the Lua fire_damage_per_interval function.
func (e *Engine) FireDamage(size float64, interval int) int {
	v, ok := e.callNumber("fire_damage_per_interval", size, float64(interval))
	if !ok {
		return e.fallback.FireDamage(size, interval)
	}
	if v < 1 {
		return 1
	}
	return int(v)
}

// callNumber calls a Lua function with number args and returns a number
// result. ok is false when the function is missing or fails; a missing
// function is logged once.
func (e *Engine) callNumber(name string, args ...float64) (float64, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		if !e.missing[name] {
			e.missing[name] = true
			e.log.Error("lua function not found, using built-in formula", zap.String("name", name))
		}
		return 0, false
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok || math.IsNaN(float64(n)) {
		e.log.Error("lua function returned non-number", zap.String("func", name))
		return 0, false
	}
	return float64(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
