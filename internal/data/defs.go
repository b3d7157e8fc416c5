package data

import "fmt"

// ThingClass selects the behaviour a thing gets when spawned.
// The set is closed; world.RegisterClass binds each tag to a factory.
type ThingClass string

const (
	ClassItem       ThingClass = "item"
	ClassBuilding   ThingClass = "building"
	ClassFire       ThingClass = "fire"
	ClassPlant      ThingClass = "plant"
	ClassDoor       ThingClass = "door"
	ClassBench      ThingClass = "bench"
	ClassProjectile ThingClass = "projectile"
	ClassPawn       ThingClass = "pawn"
)

var thingClasses = map[string]ThingClass{
	"item":       ClassItem,
	"building":   ClassBuilding,
	"fire":       ClassFire,
	"plant":      ClassPlant,
	"door":       ClassDoor,
	"bench":      ClassBench,
	"projectile": ClassProjectile,
	"pawn":       ClassPawn,
}

// TickerType selects which tick list a spawned thing joins.
type TickerType int

const (
	TickerNever  TickerType = iota
	TickerNormal            // every tick
	TickerRare              // every RareInterval ticks, staggered
	TickerLong              // every LongInterval ticks, staggered
)

const (
	RareInterval = 250
	LongInterval = 2000
)

// Interval returns how many ticks pass between two calls for this ticker type.
func (t TickerType) Interval() int {
	switch t {
	case TickerNormal:
		return 1
	case TickerRare:
		return RareInterval
	case TickerLong:
		return LongInterval
	}
	return 0
}

func (t TickerType) String() string {
	switch t {
	case TickerNever:
		return "never"
	case TickerNormal:
		return "normal"
	case TickerRare:
		return "rare"
	case TickerLong:
		return "long"
	}
	return fmt.Sprintf("ticker(%d)", int(t))
}

var tickerTypes = map[string]TickerType{
	"":       TickerNever,
	"never":  TickerNever,
	"normal": TickerNormal,
	"rare":   TickerRare,
	"long":   TickerLong,
}

// Passability of a thing for pawn movement.
type Passability int

const (
	Standable Passability = iota
	PassThroughOnly
	Impassable
)

var passabilities = map[string]Passability{
	"":                  Standable,
	"standable":         Standable,
	"pass_through_only": PassThroughOnly,
	"impassable":        Impassable,
}

// TicksPerDay is the length of one in-game day.
const TicksPerDay = 60000
