package world

import (
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/data"
)

// IsHashIntervalTick reports whether work staggered by offset is due on tick.
func IsHashIntervalTick(tick, offset, interval int) bool {
	if interval <= 0 {
		return false
	}
	return (tick+offset)%interval == 0
}

// TickList holds every spawned thing of one ticker type, split into
// interval buckets by hash offset. Each tick runs one bucket, so each thing
// runs once per interval and the work is spread over the whole interval.
// Registration changes made while a bucket runs are applied after the pass.
type TickList struct {
	ticker  data.TickerType
	buckets [][]*Thing
	pending []tickOp
	running bool
}

type tickOp struct {
	thing *Thing
	add   bool
}

func newTickList(ticker data.TickerType) *TickList {
	return &TickList{
		ticker:  ticker,
		buckets: make([][]*Thing, ticker.Interval()),
	}
}

// bucketOf places t so that it runs on ticks where
// (tick + hashOffset) % interval == 0, matching IsHashIntervalTick.
func (l *TickList) bucketOf(t *Thing) int {
	n := len(l.buckets)
	return (n - t.hashOffset%n) % n
}

func (l *TickList) Register(t *Thing) {
	l.pending = append(l.pending, tickOp{thing: t, add: true})
	if !l.running {
		l.apply()
	}
}

func (l *TickList) Deregister(t *Thing) {
	l.pending = append(l.pending, tickOp{thing: t})
	if !l.running {
		l.apply()
	}
}

func (l *TickList) apply() {
	for _, op := range l.pending {
		b := l.bucketOf(op.thing)
		switch {
		case op.add && !containsThing(l.buckets[b], op.thing):
			l.buckets[b] = append(l.buckets[b], op.thing)
		case !op.add:
			l.buckets[b] = removeThing(l.buckets[b], op.thing)
		}
	}
	l.pending = l.pending[:0]
}

// Len returns the number of registered things. Changes buffered during a
// pass are not counted until the pass ends.
func (l *TickList) Len() int {
	n := 0
	for _, b := range l.buckets {
		n += len(b)
	}
	return n
}

// Contains reports whether t is in the list.
func (l *TickList) Contains(t *Thing) bool {
	return containsThing(l.buckets[l.bucketOf(t)], t)
}

func (l *TickList) run(tick int, fn func(*Thing)) {
	bucket := l.buckets[tick%len(l.buckets)]
	if len(bucket) == 0 {
		return
	}
	snapshot := append([]*Thing(nil), bucket...)
	l.running = true
	for _, t := range snapshot {
		if !t.Spawned() {
			continue
		}
		fn(t)
	}
	l.running = false
	l.apply()
}

// TickManager drives the three tick lists of a map.
type TickManager struct {
	normal *TickList
	rare   *TickList
	long   *TickList
	log    *zap.Logger

	panics int
}

func newTickManager(log *zap.Logger) *TickManager {
	return &TickManager{
		normal: newTickList(data.TickerNormal),
		rare:   newTickList(data.TickerRare),
		long:   newTickList(data.TickerLong),
		log:    log,
	}
}

func (tm *TickManager) listFor(ticker data.TickerType) *TickList {
	switch ticker {
	case data.TickerNormal:
		return tm.normal
	case data.TickerRare:
		return tm.rare
	case data.TickerLong:
		return tm.long
	}
	return nil
}

func (tm *TickManager) Register(t *Thing) {
	if l := tm.listFor(t.Def.Ticker); l != nil {
		l.Register(t)
	}
}

func (tm *TickManager) Deregister(t *Thing) {
	if l := tm.listFor(t.Def.Ticker); l != nil {
		l.Deregister(t)
	}
}

// Normal, Rare and Long expose the lists for inspection.
func (tm *TickManager) Normal() *TickList { return tm.normal }
func (tm *TickManager) Rare() *TickList   { return tm.rare }
func (tm *TickManager) Long() *TickList   { return tm.long }

// Panics counts recovered per-thing tick failures.
func (tm *TickManager) Panics() int { return tm.panics }

func (tm *TickManager) doTick(tick int) {
	tm.normal.run(tick, func(t *Thing) {
		tm.safeTick(t, func() {
			t.tickComps(1)
			if b, ok := t.behaviour.(Ticker); ok && t.Spawned() {
				b.Tick()
			}
		})
	})
	tm.rare.run(tick, func(t *Thing) {
		tm.safeTick(t, func() {
			t.tickComps(data.RareInterval)
			if b, ok := t.behaviour.(RareTicker); ok && t.Spawned() {
				b.TickRare()
			}
		})
	})
	tm.long.run(tick, func(t *Thing) {
		tm.safeTick(t, func() {
			t.tickComps(data.LongInterval)
			if b, ok := t.behaviour.(LongTicker); ok && t.Spawned() {
				b.TickLong()
			}
		})
	})
}

// safeTick isolates one thing's tick: a panic is logged and the rest of
// the list keeps running.
func (tm *TickManager) safeTick(t *Thing, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			tm.panics++
			tm.log.Error("thing tick panicked",
				zap.Stringer("thing", t),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	fn()
}

func containsThing(list []*Thing, t *Thing) bool {
	for _, x := range list {
		if x == t {
			return true
		}
	}
	return false
}

func removeThing(list []*Thing, t *Thing) []*Thing {
	for i, x := range list {
		if x == t {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
