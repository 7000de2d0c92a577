package timetable

// Filter returns the offerings admissible under c, in catalog order. An empty
// result is valid and means nothing is eligible.
func Filter(catalog []CourseOffering, c Constraints) []CourseOffering {
	completed := make(map[string]struct{}, len(c.CompletedCourseIDs))
	for _, id := range c.CompletedCourseIDs {
		completed[id] = struct{}{}
	}
	mode := c.conflictMode()

	eligible := make([]CourseOffering, 0, len(catalog))
	for _, offering := range catalog {
		if !departmentAdmits(offering, c) {
			continue
		}
		if _, done := completed[offering.ID]; done {
			continue
		}
		if c.MaxGrade > 0 && offering.Grade > c.MaxGrade {
			continue
		}
		if c.SkipFullSections && offering.Full() {
			continue
		}
		if excludedByBlocks(offering, c.ExcludedBlocks, mode) {
			continue
		}
		eligible = append(eligible, offering)
	}
	return eligible
}

func departmentAdmits(o CourseOffering, c Constraints) bool {
	if o.Department == c.Department {
		return true
	}
	return o.Category.IsGenEd() && !c.RestrictGenEdToDepartment
}

func excludedByBlocks(o CourseOffering, blocks []HourBlock, mode ConflictMode) bool {
	for _, slot := range o.TimeSlots {
		for _, block := range blocks {
			if mode == ConflictInterval {
				if block.Intersects(slot) {
					return true
				}
				continue
			}
			if block.Contains(slot) {
				return true
			}
		}
	}
	return false
}
