package data

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed defaults/*.yaml
var defaultFS embed.FS

// Content is the raw def set a Registry is built from.
type Content struct {
	Things  []*ThingDef
	Jobs    []*JobDef
	Recipes []*RecipeDef
	Terrain []*TerrainDef
}

// Registry resolves defs by name. It is built once at content-load time and
// never mutated afterwards; the world and ai packages share it by pointer.
type Registry struct {
	things  map[string]*ThingDef
	jobs    map[string]*JobDef
	recipes map[string]*RecipeDef
	terrain map[string]*TerrainDef

	thingOrder  []*ThingDef
	recipeOrder []*RecipeDef
}

// NewRegistry validates the content and indexes it by name.
func NewRegistry(c Content) (*Registry, error) {
	r := &Registry{
		things:  make(map[string]*ThingDef, len(c.Things)),
		jobs:    make(map[string]*JobDef, len(c.Jobs)),
		recipes: make(map[string]*RecipeDef, len(c.Recipes)),
		terrain: make(map[string]*TerrainDef, len(c.Terrain)),
	}
	for _, d := range c.Things {
		if err := checkName("thing", d.Name, r.things); err != nil {
			return nil, err
		}
		r.things[d.Name] = d
		r.thingOrder = append(r.thingOrder, d)
	}
	for _, d := range c.Jobs {
		if err := checkName("job", d.Name, r.jobs); err != nil {
			return nil, err
		}
		r.jobs[d.Name] = d
	}
	for _, d := range c.Terrain {
		if err := checkName("terrain", d.Name, r.terrain); err != nil {
			return nil, err
		}
		r.terrain[d.Name] = d
	}
	for _, d := range c.Recipes {
		if err := checkName("recipe", d.Name, r.recipes); err != nil {
			return nil, err
		}
		r.recipes[d.Name] = d
		r.recipeOrder = append(r.recipeOrder, d)
	}
	if err := r.checkRefs(); err != nil {
		return nil, err
	}
	return r, nil
}

func checkName[T any](kind, name string, seen map[string]T) error {
	if name == "" {
		return fmt.Errorf("%s def with empty name", kind)
	}
	if _, dup := seen[name]; dup {
		return fmt.Errorf("duplicate %s def %q", kind, name)
	}
	return nil
}

func (r *Registry) checkRefs() error {
	var errs []error
	for _, rec := range r.recipeOrder {
		for _, tc := range append(append([]ThingCount(nil), rec.Ingredients...), rec.Products...) {
			if r.things[tc.Def] == nil {
				errs = append(errs, fmt.Errorf("recipe %q references unknown thing %q", rec.Name, tc.Def))
			}
		}
		for _, b := range rec.Benches {
			if d := r.things[b]; d == nil || d.Class != ClassBench {
				errs = append(errs, fmt.Errorf("recipe %q references unknown bench %q", rec.Name, b))
			}
		}
	}
	for _, d := range r.thingOrder {
		if d.Plant != nil && d.Plant.HarvestedThing != "" && r.things[d.Plant.HarvestedThing] == nil {
			errs = append(errs, fmt.Errorf("plant %q harvests unknown thing %q", d.Name, d.Plant.HarvestedThing))
		}
		if w := d.Weapon; w != nil && w.Ranged() {
			if p := r.things[w.Projectile]; p == nil || p.Class != ClassProjectile {
				errs = append(errs, fmt.Errorf("weapon %q fires unknown projectile %q", d.Name, w.Projectile))
			}
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) Thing(name string) *ThingDef     { return r.things[name] }
func (r *Registry) Job(name string) *JobDef         { return r.jobs[name] }
func (r *Registry) Recipe(name string) *RecipeDef   { return r.recipes[name] }
func (r *Registry) Terrain(name string) *TerrainDef { return r.terrain[name] }

// Things returns every thing def in load order.
func (r *Registry) Things() []*ThingDef {
	return append([]*ThingDef(nil), r.thingOrder...)
}

// Recipes returns every recipe def in load order.
func (r *Registry) Recipes() []*RecipeDef {
	return append([]*RecipeDef(nil), r.recipeOrder...)
}

// Counts returns the number of loaded things, jobs, recipes and terrain defs.
func (r *Registry) Counts() (things, jobs, recipes, terrain int) {
	return len(r.things), len(r.jobs), len(r.recipes), len(r.terrain)
}

// LoadRegistry loads things.yaml, jobs.yaml, recipes.yaml and terrain.yaml
// from dir.
func LoadRegistry(dir string) (*Registry, error) {
	var c Content
	var err error
	if c.Things, err = LoadThingDefs(filepath.Join(dir, "things.yaml")); err != nil {
		return nil, err
	}
	if c.Jobs, err = LoadJobDefs(filepath.Join(dir, "jobs.yaml")); err != nil {
		return nil, err
	}
	if c.Recipes, err = LoadRecipeDefs(filepath.Join(dir, "recipes.yaml")); err != nil {
		return nil, err
	}
	if c.Terrain, err = LoadTerrainDefs(filepath.Join(dir, "terrain.yaml")); err != nil {
		return nil, err
	}
	return NewRegistry(c)
}

// LoadDefault builds a registry from the defs compiled into the binary.
func LoadDefault() (*Registry, error) {
	read := func(name string) []byte {
		raw, _ := defaultFS.ReadFile("defaults/" + name)
		return raw
	}
	var c Content
	var err error
	if c.Things, err = parseThingDefs(read("things.yaml")); err != nil {
		return nil, err
	}
	if c.Jobs, err = parseJobDefs(read("jobs.yaml")); err != nil {
		return nil, err
	}
	if c.Recipes, err = parseRecipeDefs(read("recipes.yaml")); err != nil {
		return nil, err
	}
	if c.Terrain, err = parseTerrainDefs(read("terrain.yaml")); err != nil {
		return nil, err
	}
	return NewRegistry(c)
}

// LoadDir loads defs from dir when it exists, otherwise the built-in set.
func LoadDir(dir string) (*Registry, bool, error) {
	if dir != "" {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			r, err := LoadRegistry(dir)
			return r, false, err
		}
	}
	r, err := LoadDefault()
	return r, true, err
}
