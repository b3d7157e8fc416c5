package ai

import (
	"fmt"

	"github.com/woomy144/Rimworld/internal/data"
	"github.com/woomy144/Rimworld/internal/world"
)

// JobCondition is how a job ended, or Ongoing while it runs.
type JobCondition uint8

const (
	CondNone JobCondition = iota
	CondOngoing
	CondSucceeded
	CondIncompletable
	CondInterruptForced
	CondInterruptOptional
	CondErrored
)

func (c JobCondition) String() string {
	switch c {
	case CondOngoing:
		return "ongoing"
	case CondSucceeded:
		return "succeeded"
	case CondIncompletable:
		return "incompletable"
	case CondInterruptForced:
		return "interrupt_forced"
	case CondInterruptOptional:
		return "interrupt_optional"
	case CondErrored:
		return "errored"
	}
	return "none"
}

// TargetIndex selects one of a job's targets.
type TargetIndex uint8

const (
	TargetA TargetIndex = iota
	TargetB
	TargetC
	TargetD
)

func (i TargetIndex) String() string {
	return string(rune('A' + i))
}

// HaulMode tells hauling toils where a carried thing is headed.
type HaulMode uint8

const (
	HaulUndefined HaulMode = iota
	HaulToCellStorage
	HaulToBench
)

// Job describes what a pawn should do. It is owned by the pawn's job
// tracker and outlives its driver when suspended in the queue.
type Job struct {
	ID  world.JobID
	Def *data.JobDef

	TargetA, TargetB, TargetC, TargetD world.Target
	TargetQueueA, TargetQueueB         []world.Target
	Count                              int
	CountQueue                         []int

	IgnoreForbidden     bool
	IgnoreDesignations  bool
	PlayerForced        bool
	HaulMode            HaulMode
	ExpiryInterval      int
	MaxNumStaticAttacks int

	Bill *world.Bill
	Verb *Verb

	giver int // index of the giver that issued the job, -1 if none
}

// NewJob makes a job of def aimed at up to four targets.
func NewJob(def *data.JobDef, targets ...world.Target) *Job {
	j := &Job{Def: def, Count: -1, giver: -1}
	for i, t := range targets {
		if i > int(TargetD) {
			break
		}
		j.SetTarget(TargetIndex(i), t)
	}
	return j
}

func (j *Job) Target(ind TargetIndex) world.Target {
	switch ind {
	case TargetA:
		return j.TargetA
	case TargetB:
		return j.TargetB
	case TargetC:
		return j.TargetC
	case TargetD:
		return j.TargetD
	}
	return world.Target{}
}

func (j *Job) SetTarget(ind TargetIndex, t world.Target) {
	switch ind {
	case TargetA:
		j.TargetA = t
	case TargetB:
		j.TargetB = t
	case TargetC:
		j.TargetC = t
	case TargetD:
		j.TargetD = t
	}
}

// TargetQueue returns the queue for A or B; C and D have none.
func (j *Job) TargetQueue(ind TargetIndex) *[]world.Target {
	switch ind {
	case TargetA:
		return &j.TargetQueueA
	case TargetB:
		return &j.TargetQueueB
	}
	return nil
}

// QueueLen is the number of targets left in a queue.
func (j *Job) QueueLen(ind TargetIndex) int {
	if q := j.TargetQueue(ind); q != nil {
		return len(*q)
	}
	return 0
}

func (j *Job) String() string {
	return fmt.Sprintf("%s#%d (%v)", j.Def.Name, uint64(j.ID), j.TargetA)
}
