package event

import "github.com/woomy144/Rimworld/internal/core/ecs"

// ThingSpawned is emitted when a thing is placed on a map.
type ThingSpawned struct {
	ThingID ecs.EntityID
	DefName string
	X, Z    int
	Reload  bool
}

// ThingDestroyed is emitted once, when a thing reaches its terminal state.
type ThingDestroyed struct {
	ThingID ecs.EntityID
	DefName string
	Mode    string
}

// JobEnded is emitted whenever a pawn's job driver reaches a terminal state.
type JobEnded struct {
	Tick      int
	PawnID    ecs.EntityID
	JobID     uint64
	JobDef    string
	Condition string
}
