package timetable

import (
	"slices"
	"strings"
)

// Candidate is one conflict-free proposed schedule. The offerings keep their
// selection order and are never shared with another candidate.
type Candidate struct {
	offerings []CourseOffering
}

func newCandidate(offerings []CourseOffering) Candidate {
	return Candidate{offerings: slices.Clone(offerings)}
}

// Offerings returns a copy of the selected offerings in selection order.
func (c Candidate) Offerings() []CourseOffering {
	return slices.Clone(c.offerings)
}

// Len is the number of selected offerings.
func (c Candidate) Len() int {
	return len(c.offerings)
}

// TotalCredits sums the credits of the selected offerings.
func (c Candidate) TotalCredits() int {
	total := 0
	for _, o := range c.offerings {
		total += o.Credits
	}
	return total
}

// CategoryCounts counts selected offerings per category.
func (c Candidate) CategoryCounts() map[Category]int {
	counts := make(map[Category]int)
	for _, o := range c.offerings {
		counts[o.Category]++
	}
	return counts
}

// IDs returns the offering ids in selection order.
func (c Candidate) IDs() []string {
	ids := make([]string, len(c.offerings))
	for i, o := range c.offerings {
		ids[i] = o.ID
	}
	return ids
}

// Signature identifies the selected set regardless of order.
func (c Candidate) Signature() string {
	ids := c.IDs()
	slices.Sort(ids)
	return strings.Join(ids, "|")
}
