package timetable

// Summary aggregates a candidate for reporting.
type Summary struct {
	TotalCredits      int
	CourseCount       int
	CategoryBreakdown map[Category]int
}

// Summarize is total over any candidate; the empty candidate yields zeros.
func Summarize(c Candidate) Summary {
	return Summary{
		TotalCredits:      c.TotalCredits(),
		CourseCount:       c.Len(),
		CategoryBreakdown: c.CategoryCounts(),
	}
}
