package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/woomy144/Rimworld/internal/ai"
	"github.com/woomy144/Rimworld/internal/config"
	"github.com/woomy144/Rimworld/internal/core/event"
	coresys "github.com/woomy144/Rimworld/internal/core/system"
	"github.com/woomy144/Rimworld/internal/data"
	"github.com/woomy144/Rimworld/internal/persist"
	"github.com/woomy144/Rimworld/internal/scripting"
	"github.com/woomy144/Rimworld/internal/system"
	"github.com/woomy144/Rimworld/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(seed int64, w, h int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              colonysim  v0.1.0            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mmap:\033[0m %dx%d \033[90m(seed: %d)\033[0m\n\n", w, h, seed)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main simulation logic ─────────────────────────────────────────

func run() error {
	// 1. Environment and config
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	cfgPath := "config/colonysim.toml"
	if p := os.Getenv("COLONYSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Simulation.Seed, cfg.Simulation.MapWidth, cfg.Simulation.MapHeight)

	// 3. Defs and formulas
	printSection("data")
	defs, builtin, err := data.LoadDir(cfg.Data.DefsDir)
	if err != nil {
		return fmt.Errorf("load defs: %w", err)
	}
	things, jobs, recipes, terrain := defs.Counts()
	printStat("thing defs", things)
	printStat("job defs", jobs)
	printStat("recipes", recipes)
	printStat("terrain", terrain)
	if builtin {
		printOK("using built-in defs")
	}

	luaEngine, err := scripting.NewEngine(cfg.Data.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("lua formulas loaded")
	fmt.Println()

	// 4. Persistence
	printSection("persistence")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := persist.Open(ctx, cfg.Persistence, log)
	if err != nil {
		return fmt.Errorf("persistence: %w", err)
	}
	if store != nil {
		defer store.Close()
		printOK(fmt.Sprintf("%s store ready", cfg.Persistence.Backend))
	} else {
		printOK("persistence disabled")
	}

	// 5. Map: latest snapshot, or a fresh colony
	bus := event.NewBus()
	classes := world.NewClassTable()
	ai.RegisterClasses(classes, ai.DefaultEnv())
	mapCfg := world.Config{
		Width:          cfg.Simulation.MapWidth,
		Height:         cfg.Simulation.MapHeight,
		Seed:           cfg.Simulation.Seed,
		Defs:           defs,
		Formulas:       luaEngine,
		Classes:        classes,
		Bus:            bus,
		Log:            log,
		Temperature:    cfg.Simulation.AmbientTemperature,
		RainRate:       cfg.Simulation.RainRate,
		DefaultTerrain: "Soil",
	}
	m, restored, err := loadOrSeed(ctx, store, mapCfg, cfg.Colony, log)
	if err != nil {
		return err
	}
	if restored {
		printOK(fmt.Sprintf("restored snapshot at tick %d", m.TicksGame()))
	}
	printStat("things", len(m.AllThings()))
	printStat("pawns", len(m.ThingsOfClass(data.ClassPawn)))
	fmt.Println()

	// 6. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewThingTickSystem(m))
	runner.Register(system.NewWeatherSystem(m, log, cfg.Simulation.WeatherIntervalTick))
	jobStats := system.NewJobStatsSystem(bus, store, log, cfg.Simulation.JobLogFlushTick)
	runner.Register(jobStats)
	persistSys := system.NewPersistenceSystem(m, store, log, cfg.Simulation.AutosaveIntervalTick, cfg.Simulation.AutosaveKeep)
	runner.Register(persistSys)
	runner.Register(system.NewCleanupSystem(m))

	// 7. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	printSection("running")
	if cfg.Simulation.TickRate > 0 {
		printReady(fmt.Sprintf("tick loop started (tick: %s)", cfg.Simulation.TickRate))
	} else {
		printReady("tick loop started (unthrottled)")
	}
	fmt.Println()

	reason := loop(runner, m, cfg.Simulation, shutdownCh)
	log.Info("stopping", zap.String("reason", reason), zap.Int("tick", m.TicksGame()))

	// 8. Final save
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer saveCancel()
	if err := persistSys.SaveNow(saveCtx); err != nil {
		log.Error("final snapshot failed", zap.Error(err))
	}
	if err := jobStats.Flush(saveCtx); err != nil {
		log.Error("final job log flush failed", zap.Error(err))
	}
	log.Info("job summary", jobStats.Summary()...)
	return nil
}

// loop advances the runner until max ticks or a shutdown signal and
// returns why it stopped.
func loop(runner *coresys.Runner, m *world.Map, sim config.SimulationConfig, shutdownCh <-chan os.Signal) string {
	var tickC <-chan time.Time
	if sim.TickRate > 0 {
		ticker := time.NewTicker(sim.TickRate)
		defer ticker.Stop()
		tickC = ticker.C
	}
	start := m.TicksGame()
	for tick := start + 1; ; tick++ {
		if sim.MaxTicks > 0 && tick-start > sim.MaxTicks {
			return "max ticks reached"
		}
		if tickC != nil {
			select {
			case <-tickC:
			case sig := <-shutdownCh:
				return sig.String()
			}
		} else {
			select {
			case sig := <-shutdownCh:
				return sig.String()
			default:
			}
		}
		runner.Tick(tick)
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
