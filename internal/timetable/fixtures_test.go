package timetable

import "testing"

func slot(t *testing.T, day Weekday, start, end string) TimeSlot {
	t.Helper()
	s, err := NewTimeSlot(day, start, end)
	if err != nil {
		t.Fatalf("bad fixture slot: %v", err)
	}
	return s
}

func offering(id, code string, category Category, department string, credits int, slots ...TimeSlot) CourseOffering {
	return CourseOffering{
		ID:         id,
		CourseCode: code,
		Section:    id,
		Name:       code,
		Credits:    credits,
		Category:   category,
		Department: department,
		TimeSlots:  slots,
		Capacity:   40,
	}
}

// sectionCatalog is the two-section CSE2010 catalog plus one general gen-ed.
func sectionCatalog(t *testing.T) []CourseOffering {
	return []CourseOffering{
		offering("cse2010-a", "CSE2010", RequiredMajor, "CSE", 3, slot(t, Monday, "09:00", "10:30")),
		offering("cse2010-b", "CSE2010", RequiredMajor, "CSE", 3, slot(t, Tuesday, "13:00", "14:30")),
		offering("gen-101", "GEN101", GeneralGenEd, "LIBERAL", 2, slot(t, Monday, "09:00", "11:00")),
	}
}

func idsOf(offerings []CourseOffering) []string {
	ids := make([]string, len(offerings))
	for i, o := range offerings {
		ids[i] = o.ID
	}
	return ids
}

func assertNoStartKeyClash(t *testing.T, c Candidate) {
	t.Helper()
	seen := make(map[SlotKey]string)
	for _, o := range c.Offerings() {
		for _, s := range o.TimeSlots {
			if owner, ok := seen[s.Key()]; ok {
				t.Fatalf("offerings %s and %s share slot key %v", owner, o.ID, s.Key())
			}
			seen[s.Key()] = o.ID
		}
	}
}
