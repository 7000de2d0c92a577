package timetable

// allocation is the accumulator threaded through one greedy scan.
type allocation struct {
	mode     ConflictMode
	unique   bool
	occupied map[SlotKey]struct{}
	slots    []TimeSlot
	codes    map[string]struct{}
	credits  int
	picked   []CourseOffering
}

func newAllocation(opts Options) *allocation {
	mode := opts.ConflictMode
	if mode == "" {
		mode = ConflictStartKey
	}
	return &allocation{
		mode:     mode,
		unique:   opts.UniqueCourseCodes,
		occupied: make(map[SlotKey]struct{}),
		codes:    make(map[string]struct{}),
	}
}

func (a *allocation) conflicts(o CourseOffering) bool {
	for _, slot := range o.TimeSlots {
		if a.mode == ConflictInterval {
			for _, taken := range a.slots {
				if slot.Overlaps(taken) {
					return true
				}
			}
			continue
		}
		if _, taken := a.occupied[slot.Key()]; taken {
			return true
		}
	}
	return false
}

func (a *allocation) admits(o CourseOffering, maxCredits int) bool {
	if a.credits+o.Credits > maxCredits {
		return false
	}
	if a.unique {
		if _, dup := a.codes[o.CourseCode]; dup {
			return false
		}
	}
	return !a.conflicts(o)
}

func (a *allocation) accept(o CourseOffering) {
	a.picked = append(a.picked, o)
	a.credits += o.Credits
	a.codes[o.CourseCode] = struct{}{}
	for _, slot := range o.TimeSlots {
		a.occupied[slot.Key()] = struct{}{}
		a.slots = append(a.slots, slot)
	}
}

// Build greedily selects offerings from ranked, in order, skipping any that
// would exceed maxCredits or collide with an accepted slot. Selection stops
// once maxCourseCount offerings are accepted. The scan never reorders.
func Build(ranked []CourseOffering, maxCredits, maxCourseCount int, opts Options) Candidate {
	acc := newAllocation(opts)
	for _, offering := range ranked {
		if len(acc.picked) >= maxCourseCount {
			break
		}
		if acc.admits(offering, maxCredits) {
			acc.accept(offering)
		}
	}
	return newCandidate(acc.picked)
}
