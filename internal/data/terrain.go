package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TerrainDef describes what covers a map cell.
type TerrainDef struct {
	Name             string
	Flammability     float64
	ExtinguishesFire bool
	Fertility        float64
	Passable         bool
}

type terrainEntry struct {
	Name             string  `yaml:"name"`
	Flammability     float64 `yaml:"flammability"`
	ExtinguishesFire bool    `yaml:"extinguishes_fire"`
	Fertility        float64 `yaml:"fertility"`
	Impassable       bool    `yaml:"impassable"`
}

type terrainListFile struct {
	Terrain []terrainEntry `yaml:"terrain"`
}

// LoadTerrainDefs loads terrain definitions from YAML.
func LoadTerrainDefs(path string) ([]*TerrainDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read terrain: %w", err)
	}
	return parseTerrainDefs(raw)
}

func parseTerrainDefs(raw []byte) ([]*TerrainDef, error) {
	var f terrainListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse terrain: %w", err)
	}
	defs := make([]*TerrainDef, 0, len(f.Terrain))
	for _, e := range f.Terrain {
		defs = append(defs, &TerrainDef{
			Name:             e.Name,
			Flammability:     e.Flammability,
			ExtinguishesFire: e.ExtinguishesFire,
			Fertility:        e.Fertility,
			Passable:         !e.Impassable,
		})
	}
	return defs, nil
}
