package world

import (
	"encoding/json"

	"github.com/woomy144/Rimworld/internal/data"
)

const (
	DoorOpenTicks                  = 45
	doorCloseDelayTicks            = 110
	doorWillCloseSoonThreshold     = doorCloseDelayTicks + 1
	doorMaxTicksSinceFriendlyTouch = 120
)

// Door blocks pawns that cannot open it while closed. An open door closes
// by itself shortly after the last friendly pawn passed, unless held open
// or blocked by something standing in it.
type Door struct {
	thing               *Thing
	open                bool
	HoldOpen            bool
	ticksUntilClose     int
	lastFriendlyTouched int
}

func newDoor(t *Thing) any {
	return &Door{thing: t, lastFriendlyTouched: -9999}
}

func (d *Door) Open() bool { return d.open }

// FreePassage reports whether pawns can walk through without waiting.
func (d *Door) FreePassage() bool {
	return d.open && (d.HoldOpen || !d.WillCloseSoon())
}

func (d *Door) WillCloseSoon() bool {
	if !d.thing.Spawned() || !d.open {
		return true
	}
	if d.HoldOpen {
		return false
	}
	if d.ticksUntilClose > 0 && d.ticksUntilClose <= doorWillCloseSoonThreshold && !d.BlockedOpenMomentary() {
		return true
	}
	return d.canTryCloseAutomatically() && !d.BlockedOpenMomentary()
}

// BlockedOpenMomentary reports whether an item or pawn stands in the door.
func (d *Door) BlockedOpenMomentary() bool {
	m := d.thing.Map()
	if m == nil {
		return false
	}
	for _, t := range m.ThingsAt(d.thing.Position) {
		if t.Def.Class == data.ClassItem || t.Def.Class == data.ClassPawn {
			return true
		}
	}
	return false
}

func (d *Door) friendlyTouchedRecently() bool {
	return d.thing.owner.TicksGame() < d.lastFriendlyTouched+doorMaxTicksSinceFriendlyTouch
}

func (d *Door) canTryCloseAutomatically() bool {
	return d.friendlyTouchedRecently() && !d.HoldOpen
}

// PawnCanOpen reports whether a pawn of the given faction may open the
// door. Unowned doors open for everyone.
func (d *Door) PawnCanOpen(pawn *Thing) bool {
	return d.thing.Faction == "" || d.thing.Faction == pawn.Faction
}

// BlocksPawn reports whether the door stops pawn from entering.
func (d *Door) BlocksPawn(pawn *Thing) bool {
	return !d.open && !d.PawnCanOpen(pawn)
}

func (d *Door) Tick() {
	if !d.open {
		return
	}
	m := d.thing.Map()
	pawnInside := false
	for _, t := range m.ThingsAt(d.thing.Position) {
		if t.Def.Class == data.ClassPawn {
			pawnInside = true
			d.CheckFriendlyTouched(t)
		}
	}
	if d.ticksUntilClose > 0 {
		if pawnInside {
			d.ticksUntilClose = doorCloseDelayTicks
		}
		d.ticksUntilClose--
		if d.ticksUntilClose <= 0 && !d.HoldOpen && !d.tryClose() {
			d.ticksUntilClose = 1
		}
	} else if d.canTryCloseAutomatically() {
		d.ticksUntilClose = doorCloseDelayTicks
	}
}

func (d *Door) CheckFriendlyTouched(pawn *Thing) {
	if d.PawnCanOpen(pawn) {
		d.lastFriendlyTouched = d.thing.owner.TicksGame()
	}
}

// NotifyPawnApproaching is called by a pather one step before entering.
func (d *Door) NotifyPawnApproaching(pawn *Thing, moveCost int) {
	d.CheckFriendlyTouched(pawn)
}

// StartManualOpenBy opens the door; a closed door takes DoorOpenTicks to
// swing open, which the opener spends waiting.
func (d *Door) StartManualOpenBy(pawn *Thing) {
	d.doorOpen(doorCloseDelayTicks)
}

func (d *Door) StartManualCloseBy(pawn *Thing) {
	d.ticksUntilClose = doorCloseDelayTicks
}

func (d *Door) doorOpen(ticksToClose int) {
	if d.open {
		d.ticksUntilClose = ticksToClose
		return
	}
	d.ticksUntilClose = DoorOpenTicks + ticksToClose
	d.open = true
}

func (d *Door) tryClose() bool {
	if d.HoldOpen || d.BlockedOpenMomentary() {
		return false
	}
	d.open = false
	return true
}

type doorState struct {
	Open                bool `json:"open"`
	HoldOpen            bool `json:"hold_open"`
	TicksUntilClose     int  `json:"ticks_until_close"`
	LastFriendlyTouched int  `json:"last_friendly_touch"`
}

func (d *Door) SaveState() (json.RawMessage, error) {
	return json.Marshal(doorState{
		Open:                d.open,
		HoldOpen:            d.HoldOpen,
		TicksUntilClose:     d.ticksUntilClose,
		LastFriendlyTouched: d.lastFriendlyTouched,
	})
}

func (d *Door) LoadState(raw json.RawMessage) error {
	var s doorState
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	d.open, d.HoldOpen = s.Open, s.HoldOpen
	d.ticksUntilClose, d.lastFriendlyTouched = s.TicksUntilClose, s.LastFriendlyTouched
	return nil
}
