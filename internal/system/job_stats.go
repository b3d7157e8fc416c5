package system

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/woomy144/Rimworld/internal/core/event"
	coresys "github.com/woomy144/Rimworld/internal/core/system"
	"github.com/woomy144/Rimworld/internal/persist"
)

// JobStatsSystem counts finished jobs by condition and appends them to the
// job log in batches. Events arrive through the bus one tick late. Phase 2
// (PostTick).
type JobStatsSystem struct {
	writer    persist.JobLogWriter // nil = counts only
	log       *zap.Logger
	interval  int
	tickCount int

	counts  map[string]int
	pending []persist.JobLogEntry
}

func NewJobStatsSystem(bus *event.Bus, writer persist.JobLogWriter, log *zap.Logger, flushIntervalTicks int) *JobStatsSystem {
	s := &JobStatsSystem{
		writer:   writer,
		log:      log,
		interval: flushIntervalTicks,
		counts:   make(map[string]int),
	}
	event.Subscribe(bus, s.onJobEnded)
	return s
}

func (s *JobStatsSystem) onJobEnded(e event.JobEnded) {
	s.counts[e.Condition]++
	if s.writer == nil {
		return
	}
	s.pending = append(s.pending, persist.JobLogEntry{
		Tick:      e.Tick,
		PawnID:    uint64(e.PawnID),
		JobID:     e.JobID,
		JobDef:    e.JobDef,
		Condition: e.Condition,
	})
}

func (s *JobStatsSystem) Phase() coresys.Phase { return coresys.PhasePostTick }

func (s *JobStatsSystem) Update(_ int) {
	s.tickCount++
	if s.interval > 0 && s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		s.log.Error("write job log", zap.Error(err))
	}
}

// Flush writes the pending entries. On failure they stay pending and are
// retried on the next flush.
func (s *JobStatsSystem) Flush(ctx context.Context) error {
	if s.writer == nil || len(s.pending) == 0 {
		return nil
	}
	if err := s.writer.WriteJobLog(ctx, s.pending); err != nil {
		return err
	}
	s.pending = s.pending[:0]
	return nil
}

// Count returns how many jobs ended with the condition, by its string name.
func (s *JobStatsSystem) Count(condition string) int { return s.counts[condition] }

// Pending returns how many entries wait for the next flush.
func (s *JobStatsSystem) Pending() int { return len(s.pending) }

// Summary lists the counts as zap fields, sorted by condition.
func (s *JobStatsSystem) Summary() []zap.Field {
	names := make([]string, 0, len(s.counts))
	for name := range s.counts {
		names = append(names, name)
	}
	sort.Strings(names)
	fields := make([]zap.Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, zap.Int(name, s.counts[name]))
	}
	return fields
}
