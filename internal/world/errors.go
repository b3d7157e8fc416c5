package world

import "errors"

var (
	ErrOutOfBounds    = errors.New("cell out of bounds")
	ErrAlreadySpawned = errors.New("thing already spawned")
	ErrDestroyed      = errors.New("thing destroyed")
	ErrUnknownDef     = errors.New("unknown def")
	ErrNotSpawned     = errors.New("thing not spawned")
)
