package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colonysim.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[simulation]
seed = 7
map_width = 32
tick_rate = "100ms"

[persistence]
backend = "none"

[[colony.seed_items]]
def = "Steel"
x = 3
z = 4
count = 50

[[colony.plants]]
def = "PotatoPlant"
x = 9
z = 9
growth = 0.8
cut = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Simulation.Seed)
	assert.Equal(t, 32, cfg.Simulation.MapWidth)
	assert.Equal(t, 64, cfg.Simulation.MapHeight, "unset keys keep defaults")
	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.TickRate)
	assert.Equal(t, "none", cfg.Persistence.Backend)
	require.Len(t, cfg.Colony.SeedItems, 1)
	assert.Equal(t, SeedItem{Def: "Steel", X: 3, Z: 4, Count: 50}, cfg.Colony.SeedItems[0])
	require.Len(t, cfg.Colony.Plants, 1)
	assert.Equal(t, SeedPlant{Def: "PotatoPlant", X: 9, Z: 9, Growth: 0.8, Cut: true}, cfg.Colony.Plants[0])
	assert.Equal(t, 5, cfg.Simulation.AutosaveKeep)
	assert.Equal(t, 2500, cfg.Simulation.WeatherIntervalTick)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"backend", "[persistence]\nbackend = \"redis\"\n"},
		{"map size", "[simulation]\nmap_width = 0\n"},
		{"syntax", "[simulation\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
