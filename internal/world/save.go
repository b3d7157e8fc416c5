package world

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/core/ecs"
)

// ThingRecord is the persisted form of one thing. Held things (carried or
// equipped) are saved unspawned and re-attached by their holder's state.
type ThingRecord struct {
	ID        ecs.EntityID               `json:"id"`
	Def       string                     `json:"def"`
	X         int                        `json:"x"`
	Z         int                        `json:"z"`
	Stack     int                        `json:"stack"`
	HitPoints int                        `json:"hp"`
	Forbidden bool                       `json:"forbidden,omitempty"`
	Faction   string                     `json:"faction,omitempty"`
	Spawned   bool                       `json:"spawned"`
	State     json.RawMessage            `json:"state,omitempty"`
	Comps     map[string]json.RawMessage `json:"comps,omitempty"`
}

// MapRecord is the authoritative map state. Reservations are not part of
// it; restored jobs claim them again.
type MapRecord struct {
	Width        int           `json:"width"`
	Height       int           `json:"height"`
	Seed         int64         `json:"seed"`
	Tick         int           `json:"tick"`
	NextJobID    JobID         `json:"next_job_id"`
	Temperature  float64       `json:"temperature"`
	RainRate     float64       `json:"rain_rate"`
	Terrain      []string      `json:"terrain,omitempty"`
	Stockpile    []Cell        `json:"stockpile,omitempty"`
	Designations []Designation `json:"designations,omitempty"`
	Things       []ThingRecord `json:"things"`
}

// Save captures the map. Destroyed things awaiting cleanup are skipped.
func (m *Map) Save() (*MapRecord, error) {
	rec := &MapRecord{
		Width:        m.Width,
		Height:       m.Height,
		Seed:         m.seed,
		Tick:         m.tick,
		NextJobID:    m.nextJobID,
		Temperature:  m.temperature,
		RainRate:     m.rainRate,
		Stockpile:    m.Stockpile.Cells(),
		Designations: m.Designations.All(),
	}
	rec.Terrain = make([]string, len(m.terrain))
	for i, td := range m.terrain {
		if td != nil {
			rec.Terrain[i] = td.Name
		}
	}
	var errs []error
	for _, t := range m.AllThings() {
		if t.Destroyed() {
			continue
		}
		r, err := saveThing(t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rec.Things = append(rec.Things, r)
	}
	return rec, errors.Join(errs...)
}

func saveThing(t *Thing) (ThingRecord, error) {
	r := ThingRecord{
		ID:        t.ID,
		Def:       t.Def.Name,
		X:         t.Position.X,
		Z:         t.Position.Z,
		Stack:     t.StackCount,
		HitPoints: t.HitPoints,
		Forbidden: t.forbidden,
		Faction:   t.Faction,
		Spawned:   t.Spawned(),
	}
	if s, ok := t.behaviour.(Saver); ok {
		raw, err := s.SaveState()
		if err != nil {
			return r, fmt.Errorf("save %v: %w", t, err)
		}
		r.State = raw
	}
	for _, c := range t.comps {
		s, ok := c.(compSaver)
		if !ok {
			continue
		}
		raw, err := s.SaveState()
		if err != nil {
			return r, fmt.Errorf("save %v comp %s: %w", t, c.Name(), err)
		}
		if r.Comps == nil {
			r.Comps = make(map[string]json.RawMessage)
		}
		r.Comps[c.Name()] = raw
	}
	return r, nil
}

// Restore rebuilds a map from a record with the same defs and classes.
// The random source is reseeded from the saved seed and tick.
// Things keep their saved handles. Spawn hooks see respawningAfterLoad,
// and post-load hooks run once every thing is back.
func Restore(cfg Config, rec *MapRecord) (*Map, error) {
	cfg.Width, cfg.Height = rec.Width, rec.Height
	cfg.Temperature, cfg.RainRate = rec.Temperature, rec.RainRate
	cfg.Seed = rec.Seed ^ int64(rec.Tick)
	m, err := NewMap(cfg)
	if err != nil {
		return nil, err
	}
	m.seed = rec.Seed
	m.tick = rec.Tick
	m.nextJobID = max(rec.NextJobID, 1)
	for i, name := range rec.Terrain {
		if name == "" || i >= len(m.terrain) {
			continue
		}
		td := m.defs.Terrain(name)
		if td == nil {
			return nil, fmt.Errorf("terrain %q: %w", name, ErrUnknownDef)
		}
		m.terrain[i] = td
	}
	for _, c := range rec.Stockpile {
		m.Stockpile.AddCell(c)
	}

	// Two passes: every handle must exist before any state referencing
	// another thing is decoded.
	things := make([]*Thing, 0, len(rec.Things))
	for _, r := range rec.Things {
		def := m.defs.Thing(r.Def)
		if def == nil {
			return nil, fmt.Errorf("thing %q: %w", r.Def, ErrUnknownDef)
		}
		if !m.ents.Pool().Reserve(r.ID) {
			return nil, fmt.Errorf("thing %s#%d: duplicate handle", r.Def, uint64(r.ID))
		}
		t := m.buildThing(r.ID, def)
		t.Position = Cell{r.X, r.Z}
		t.StackCount = r.Stack
		t.HitPoints = r.HitPoints
		t.forbidden = r.Forbidden
		t.Faction = r.Faction
		things = append(things, t)
	}
	for i, r := range rec.Things {
		t := things[i]
		if s, ok := t.behaviour.(Saver); ok && len(r.State) > 0 {
			if err := s.LoadState(r.State); err != nil {
				return nil, fmt.Errorf("load %v: %w", t, err)
			}
		}
		for _, c := range t.comps {
			raw, ok := r.Comps[c.Name()]
			if s, saver := c.(compSaver); saver && ok {
				if err := s.LoadState(raw); err != nil {
					return nil, fmt.Errorf("load %v comp %s: %w", t, c.Name(), err)
				}
			}
		}
	}
	for i, r := range rec.Things {
		if !r.Spawned {
			continue
		}
		if err := m.Spawn(things[i], Cell{r.X, r.Z}, true); err != nil {
			return nil, err
		}
	}
	for _, d := range rec.Designations {
		m.Designations.Add(d.Kind, d.Target)
	}
	for _, t := range things {
		if h, ok := t.behaviour.(PostLoadHook); ok {
			h.PostLoadInit()
		}
	}
	m.log.Info("map restored",
		zap.Int("tick", m.tick),
		zap.Int("things", len(things)),
	)
	return m, nil
}
