package ai

// jobVerb is the verb a job attacks with: the one set on the job, or the
// pawn's primary.
func jobVerb(d *JobDriver) *Verb {
	if d.Job.Verb != nil {
		return d.Job.Verb
	}
	return d.Pawn.Equipment.PrimaryVerb()
}

// GotoCastPosition walks toward the target in ind until the job's verb can
// hit it. A pawn already in range moves on at once.
func GotoCastPosition(ind TargetIndex) *Toil {
	toil := NewToil("goto_cast_position")
	inRange := func(d *JobDriver) bool {
		c, ok := d.Map().TargetCell(d.Job.Target(ind))
		return ok && jobVerb(d).CanHitFrom(d.Pawn.Position(), c)
	}
	toil.InitAction = func() {
		d := toil.Driver()
		if inRange(d) {
			d.Pawn.Pather.StopDead()
			d.ReadyForNextToil()
			return
		}
		d.Pawn.Pather.StartPath(d.Job.Target(ind), PathTouch)
	}
	toil.TickAction = func() {
		d := toil.Driver()
		if inRange(d) {
			d.Pawn.Pather.StopDead()
			d.ReadyForNextToil()
		}
	}
	toil.CompleteMode = CompletePatherArrival
	FailOnDespawnedOrNull(toil, ind)
	return toil
}

// CastVerb attacks the target in ind once and waits out the warmup and
// cooldown. A pawn still cooling down from an earlier attack casts as soon
// as it is free.
func CastVerb(ind TargetIndex) *Toil {
	toil := NewToil("cast_verb")
	cast := false
	try := func() {
		d := toil.Driver()
		if d.Pawn.Stances.Busy() {
			return
		}
		cast = true
		if !jobVerb(d).TryStartCastOn(d.Pawn, d.Job.Target(ind)) {
			d.EndJobWith(CondIncompletable)
		}
	}
	toil.InitAction = func() {
		cast = false
		try()
	}
	toil.TickAction = func() {
		if !cast {
			try()
		}
	}
	toil.CompleteMode = CompleteFinishedBusy
	return toil
}
