package timetable

import (
	"slices"
	"strings"
)

// Priority lists categories from most to least preferred. Categories absent
// from the list rank after every listed one.
type Priority []Category

// DefaultPriority is the declared baseline policy.
var DefaultPriority = Priority{BasicGenEd, RequiredMajor, ElectiveMajor, CoreGenEd, GeneralGenEd}

// Rank returns the position of c in p, or len(p) when c is not listed.
func (p Priority) Rank(c Category) int {
	for i, listed := range p {
		if listed == c {
			return i
		}
	}
	return len(p)
}

// Compare orders two categories by rank.
func (p Priority) Compare(a, b Category) int {
	return p.Rank(a) - p.Rank(b)
}

// Rank stable-sorts offerings by category priority. A nil priority selects
// DefaultPriority. The input slice is not modified.
func Rank(offerings []CourseOffering, priority Priority) []CourseOffering {
	return RankPreferring(offerings, priority, nil)
}

// RankPreferring ranks like Rank and then, inside each category, moves
// offerings taught by one of professors ahead of the rest. Category order is
// never changed by a preference.
func RankPreferring(offerings []CourseOffering, priority Priority, professors []string) []CourseOffering {
	if priority == nil {
		priority = DefaultPriority
	}
	preferred := make(map[string]struct{}, len(professors))
	for _, p := range professors {
		preferred[professorKey(p)] = struct{}{}
	}
	prefers := func(o CourseOffering) int {
		if _, ok := preferred[professorKey(o.Professor)]; ok && o.Professor != "" {
			return 0
		}
		return 1
	}

	ranked := slices.Clone(offerings)
	slices.SortStableFunc(ranked, func(a, b CourseOffering) int {
		if cmp := priority.Compare(a.Category, b.Category); cmp != 0 {
			return cmp
		}
		return prefers(a) - prefers(b)
	})
	return ranked
}

func professorKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// tiers splits a ranked list into runs of equal category rank.
func tiers(ranked []CourseOffering, priority Priority) [][]CourseOffering {
	var out [][]CourseOffering
	start := 0
	for i := 1; i <= len(ranked); i++ {
		if i == len(ranked) || priority.Rank(ranked[i].Category) != priority.Rank(ranked[start].Category) {
			out = append(out, ranked[start:i])
			start = i
		}
	}
	return out
}
