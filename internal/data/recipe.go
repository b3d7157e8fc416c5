package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ThingCount pairs a def name with a quantity.
type ThingCount struct {
	Def   string `yaml:"def"`
	Count int    `yaml:"count"`
}

// RecipeDef is a bill a bench can work: consume ingredients, spend work,
// produce products.
type RecipeDef struct {
	Name        string
	Label       string
	WorkAmount  float64 // work ticks at speed 1
	Ingredients []ThingCount
	Products    []ThingCount
	Benches     []string // bench defs that can run this recipe
}

// UsableAt reports whether the recipe can be worked at the given bench def.
func (r *RecipeDef) UsableAt(benchDef string) bool {
	for _, b := range r.Benches {
		if b == benchDef {
			return true
		}
	}
	return false
}

type recipeEntry struct {
	Name        string       `yaml:"name"`
	Label       string       `yaml:"label"`
	WorkAmount  float64      `yaml:"work_amount"`
	Ingredients []ThingCount `yaml:"ingredients"`
	Products    []ThingCount `yaml:"products"`
	Benches     []string     `yaml:"benches"`
}

type recipeListFile struct {
	Recipes []recipeEntry `yaml:"recipes"`
}

// LoadRecipeDefs loads recipe definitions from YAML.
func LoadRecipeDefs(path string) ([]*RecipeDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipes: %w", err)
	}
	return parseRecipeDefs(raw)
}

func parseRecipeDefs(raw []byte) ([]*RecipeDef, error) {
	var f recipeListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse recipes: %w", err)
	}
	defs := make([]*RecipeDef, 0, len(f.Recipes))
	for _, e := range f.Recipes {
		d := &RecipeDef{
			Name:        e.Name,
			Label:       e.Label,
			WorkAmount:  e.WorkAmount,
			Ingredients: e.Ingredients,
			Products:    e.Products,
			Benches:     e.Benches,
		}
		if d.Label == "" {
			d.Label = d.Name
		}
		defs = append(defs, d)
	}
	return defs, nil
}
