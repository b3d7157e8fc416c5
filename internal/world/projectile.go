package world

import (
	"encoding/json"
	"math"

	"github.com/woomy144/Rimworld/internal/core/ecs"
	"github.com/woomy144/Rimworld/internal/data"
)

// Projectile flies in a straight line from its launch cell to its
// destination and applies its effect on arrival. Sparks start fires;
// everything else damages the first thing with hit points there.
type Projectile struct {
	thing         *Thing
	Launcher      ecs.EntityID
	Origin        Cell
	Destination   Target
	DestCell      Cell
	TicksToImpact int
	totalTicks    int
}

func newProjectile(t *Thing) any {
	return &Projectile{thing: t}
}

// Launch aims a spawned projectile at dest.
func (p *Projectile) Launch(launcher *Thing, dest Target) {
	m := p.thing.Map()
	if m == nil {
		return
	}
	if launcher != nil {
		p.Launcher = launcher.ID
	}
	p.Origin = p.thing.Position
	p.Destination = dest
	cell, ok := m.TargetCell(dest)
	if !ok {
		cell = p.Origin
	}
	p.DestCell = cell
	speed := 1.0
	if props := p.thing.Def.Projectile; props != nil && props.Speed > 0 {
		speed = props.Speed
	}
	dist := math.Sqrt(float64(p.Origin.DistanceSquared(cell)))
	p.totalTicks = max(1, int(math.Ceil(dist/speed)))
	p.TicksToImpact = p.totalTicks
}

func (p *Projectile) Tick() {
	if p.totalTicks == 0 {
		return
	}
	m := p.thing.Map()
	p.TicksToImpact--
	if p.TicksToImpact <= 0 {
		p.impact(m)
		return
	}
	frac := 1 - float64(p.TicksToImpact)/float64(p.totalTicks)
	pos := Cell{
		X: p.Origin.X + int(math.Round(float64(p.DestCell.X-p.Origin.X)*frac)),
		Z: p.Origin.Z + int(math.Round(float64(p.DestCell.Z-p.Origin.Z)*frac)),
	}
	if pos != p.thing.Position {
		if m.Impassable(pos) {
			p.DestCell = pos
			p.impact(m)
			return
		}
		_ = m.MoveThing(p.thing, pos)
	}
}

func (p *Projectile) impact(m *Map) {
	cell := p.DestCell
	if p.thing.Def.Name == SparkDefName {
		p.thing.Destroy(DestroyVanish)
		m.TryStartFireIn(cell, MinFireSize)
		return
	}
	damage := 0
	if props := p.thing.Def.Projectile; props != nil {
		damage = props.Damage
	}
	hit := m.TargetThing(p.Destination)
	if hit == nil || !hit.Spawned() || hit.Position != cell {
		hit = nil
		for _, t := range m.ThingsAt(cell) {
			if t != p.thing && t.ID != p.Launcher && t.Def.MaxHitPoints > 0 && t.Def.Class != data.ClassProjectile {
				hit = t
				break
			}
		}
	}
	p.thing.Destroy(DestroyVanish)
	if hit != nil && damage > 0 {
		hit.TakeDamage(Damage{Kind: DamageBullet, Amount: damage, Instigator: p.Launcher})
	}
}

type projectileState struct {
	Launcher      ecs.EntityID `json:"launcher,omitempty"`
	Origin        Cell         `json:"origin"`
	Destination   Target       `json:"destination"`
	DestCell      Cell         `json:"dest_cell"`
	TicksToImpact int          `json:"ticks_to_impact"`
	TotalTicks    int          `json:"total_ticks"`
}

func (p *Projectile) SaveState() (json.RawMessage, error) {
	return json.Marshal(projectileState{
		Launcher:      p.Launcher,
		Origin:        p.Origin,
		Destination:   p.Destination,
		DestCell:      p.DestCell,
		TicksToImpact: p.TicksToImpact,
		TotalTicks:    p.totalTicks,
	})
}

func (p *Projectile) LoadState(raw json.RawMessage) error {
	var s projectileState
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	p.Launcher, p.Origin, p.Destination = s.Launcher, s.Origin, s.Destination
	p.DestCell, p.TicksToImpact, p.totalTicks = s.DestCell, s.TicksToImpact, s.TotalTicks
	return nil
}
