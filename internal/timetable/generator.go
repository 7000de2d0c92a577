package timetable

import "math/rand"

// Generate produces up to c.VariantCount distinct candidate schedules.
//
// Constraints and catalog are validated before any work; validation failures
// are returned as validation errors. An empty eligible pool, or a pool that
// yields no non-empty allocation, returns an empty slice and no error.
//
// Preferred professors lead their category tier in the ranked list, which
// variant 0 of every strategy follows.
//
// Variants follow c.Options.Diversification:
//   - none: the same ranked list is allocated every time, duplicates kept.
//   - rotate: variant k rotates every category tier left by k positions.
//     Tier order is untouched. Duplicate candidates are skipped and the next
//     rotation is tried, up to the length of the longest tier.
//   - exclude-previous: each variant drops every course code picked by the
//     variants before it, until the pool runs dry.
//   - shuffle: variant 0 is unshuffled, later attempts shuffle each tier
//     with rand.NewSource(Seed+k). At most 4*VariantCount attempts.
func Generate(catalog []CourseOffering, c Constraints) ([]Candidate, error) {
	if err := ValidateConstraints(c); err != nil {
		return nil, err
	}
	if err := ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	priority := c.Options.Priority
	if priority == nil {
		priority = DefaultPriority
	}
	ranked := RankPreferring(Filter(catalog, c), priority, c.Options.PreferProfessors)
	if len(ranked) == 0 {
		return []Candidate{}, nil
	}

	g := &variantSet{limit: c.VariantCount, seen: make(map[string]struct{})}
	build := func(list []CourseOffering) Candidate {
		return Build(list, c.MaxCredits, c.MaxCourseCount, c.Options)
	}

	switch c.diversification() {
	case DiversifyNone:
		for i := 0; i < c.VariantCount; i++ {
			g.keep(build(ranked))
		}
	case DiversifyExcludePrevious:
		used := make(map[string]struct{})
		pool := ranked
		for !g.full() && len(pool) > 0 {
			candidate := build(pool)
			if candidate.Len() == 0 {
				break
			}
			g.add(candidate)
			for _, o := range candidate.offerings {
				used[o.CourseCode] = struct{}{}
			}
			pool = withoutCodes(ranked, used)
		}
	case DiversifyShuffle:
		groups := tiers(ranked, priority)
		for k := 0; k < 4*c.VariantCount && !g.full(); k++ {
			list := ranked
			if k > 0 {
				list = shuffleTiers(groups, rand.New(rand.NewSource(c.Options.Seed+int64(k))))
			}
			g.add(build(list))
		}
	default:
		groups := tiers(ranked, priority)
		attempts := longestTier(groups)
		for k := 0; k < attempts && !g.full(); k++ {
			g.add(build(rotateTiers(groups, k)))
		}
	}
	return g.out, nil
}

type variantSet struct {
	limit int
	seen  map[string]struct{}
	out   []Candidate
}

func (v *variantSet) full() bool {
	return len(v.out) >= v.limit
}

// keep appends non-empty candidates without checking for duplicates.
func (v *variantSet) keep(c Candidate) {
	if c.Len() == 0 || v.full() {
		return
	}
	v.out = append(v.out, c)
}

// add appends non-empty candidates not seen before.
func (v *variantSet) add(c Candidate) {
	if c.Len() == 0 || v.full() {
		return
	}
	sig := c.Signature()
	if _, dup := v.seen[sig]; dup {
		return
	}
	v.seen[sig] = struct{}{}
	v.out = append(v.out, c)
}

func rotateTiers(groups [][]CourseOffering, k int) []CourseOffering {
	var out []CourseOffering
	for _, tier := range groups {
		shift := k % len(tier)
		out = append(out, tier[shift:]...)
		out = append(out, tier[:shift]...)
	}
	return out
}

func shuffleTiers(groups [][]CourseOffering, rng *rand.Rand) []CourseOffering {
	var out []CourseOffering
	for _, tier := range groups {
		start := len(out)
		out = append(out, tier...)
		part := out[start:]
		rng.Shuffle(len(part), func(i, j int) {
			part[i], part[j] = part[j], part[i]
		})
	}
	return out
}

func longestTier(groups [][]CourseOffering) int {
	longest := 1
	for _, tier := range groups {
		if len(tier) > longest {
			longest = len(tier)
		}
	}
	return longest
}

func withoutCodes(ranked []CourseOffering, codes map[string]struct{}) []CourseOffering {
	out := make([]CourseOffering, 0, len(ranked))
	for _, o := range ranked {
		if _, used := codes[o.CourseCode]; !used {
			out = append(out, o)
		}
	}
	return out
}
