package timetable

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
)

// denseCatalog builds a catalog with plenty of start-key and interval clashes.
func denseCatalog(t *testing.T) []CourseOffering {
	categories := []Category{RequiredMajor, ElectiveMajor, BasicGenEd, CoreGenEd, GeneralGenEd}
	starts := []string{"09:00", "09:30", "10:00", "13:00"}
	ends := []string{"10:30", "11:00", "11:30", "14:30"}

	var out []CourseOffering
	for i := 0; i < 40; i++ {
		day := Weekday(i%5 + 1)
		idx := (i / 5) % len(starts)
		dept := "CSE"
		if i%7 == 0 {
			dept = "EE"
		}
		credits := 1 + i%3
		out = append(out, offering(
			fmt.Sprintf("off-%02d", i),
			fmt.Sprintf("C%02d", i%17),
			categories[i%len(categories)],
			dept,
			credits,
			slot(t, day, starts[idx], ends[idx]),
		))
	}
	return out
}

func TestGenerateInvariantsHoldForEveryStrategy(t *testing.T) {
	catalog := denseCatalog(t)
	strategies := []Diversification{DiversifyNone, DiversifyRotate, DiversifyExcludePrevious, DiversifyShuffle}
	modes := []ConflictMode{ConflictStartKey, ConflictInterval}

	for _, strategy := range strategies {
		for _, mode := range modes {
			t.Run(string(strategy)+"/"+string(mode), func(t *testing.T) {
				c := DefaultConstraints("CSE")
				c.MaxCredits = 12
				c.VariantCount = 4
				c.CompletedCourseIDs = []string{"off-01", "off-12"}
				c.ExcludedBlocks = []HourBlock{{Day: Tuesday, Hour: 9}}
				c.Options.Diversification = strategy
				c.Options.ConflictMode = mode
				c.Options.Seed = 7

				got, err := Generate(catalog, c)
				require.NoError(t, err)
				require.NotEmpty(t, got)
				assert.LessOrEqual(t, len(got), c.VariantCount)

				for _, cand := range got {
					assert.LessOrEqual(t, cand.TotalCredits(), c.MaxCredits)
					assert.LessOrEqual(t, cand.Len(), c.MaxCourseCount)
					assert.Positive(t, cand.Len())
					assertNoStartKeyClash(t, cand)

					picked := cand.Offerings()
					for i, o := range picked {
						if i > 0 {
							assert.LessOrEqual(t, DefaultPriority.Rank(picked[i-1].Category), DefaultPriority.Rank(o.Category),
								"%s ranks before %s", o.ID, picked[i-1].ID)
						}
						assert.NotContains(t, c.CompletedCourseIDs, o.ID)
						for _, s := range o.TimeSlots {
							assert.False(t, HourBlock{Day: Tuesday, Hour: 9}.Contains(s), o.ID)
						}
						if o.Department != "CSE" {
							assert.True(t, o.Category.IsGenEd(), o.ID)
						}
						if mode != ConflictInterval {
							continue
						}
						for _, other := range picked[:i] {
							for _, a := range o.TimeSlots {
								for _, b := range other.TimeSlots {
									assert.False(t, a.Overlaps(b), "%s overlaps %s", o.ID, other.ID)
								}
							}
						}
					}
				}
			})
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	catalog := denseCatalog(t)
	for _, strategy := range []Diversification{DiversifyNone, DiversifyRotate, DiversifyExcludePrevious, DiversifyShuffle} {
		c := DefaultConstraints("CSE")
		c.Options.Diversification = strategy
		c.Options.Seed = 42

		first, err := Generate(catalog, c)
		require.NoError(t, err)
		second, err := Generate(catalog, c)
		require.NoError(t, err)

		require.Len(t, second, len(first), strategy)
		for i := range first {
			assert.Equal(t, first[i].IDs(), second[i].IDs(), strategy)
		}
	}
}

func TestGenerateNoneRepeatsBaseline(t *testing.T) {
	c := DefaultConstraints("CSE")
	c.Options.Diversification = DiversifyNone

	got, err := Generate(sectionCatalog(t), c)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, cand := range got {
		assert.Equal(t, []string{"cse2010-a", "cse2010-b"}, cand.IDs())
	}
}

func TestGenerateSectionScenarioUnderTightCredits(t *testing.T) {
	c := DefaultConstraints("CSE")
	c.MaxCredits = 5
	c.Options.Diversification = DiversifyRotate

	got, err := Generate(sectionCatalog(t), c)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"cse2010-a"}, got[0].IDs())
	assert.Equal(t, []string{"cse2010-b", "gen-101"}, got[1].IDs())
	for _, cand := range got {
		assert.LessOrEqual(t, cand.TotalCredits(), 5)
	}
}

func TestGenerateHonoursExcludedMondayNine(t *testing.T) {
	c := DefaultConstraints("CSE")
	c.ExcludedBlocks = []HourBlock{{Day: Monday, Hour: 9}}

	got, err := Generate(sectionCatalog(t), c)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"cse2010-b"}, got[0].IDs())
}

func TestGenerateRotateProducesDistinctVariants(t *testing.T) {
	catalog := []CourseOffering{
		offering("r1", "R1", RequiredMajor, "CSE", 3, slot(t, Monday, "09:00", "10:00")),
		offering("r2", "R2", RequiredMajor, "CSE", 3, slot(t, Monday, "09:00", "10:00")),
		offering("r3", "R3", RequiredMajor, "CSE", 3, slot(t, Tuesday, "09:00", "10:00")),
	}
	c := DefaultConstraints("CSE")
	c.MaxCredits = 6

	got, err := Generate(catalog, c)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"r1", "r3"}, got[0].IDs())
	assert.Equal(t, []string{"r2", "r3"}, got[1].IDs())
	assert.NotEqual(t, got[0].Signature(), got[1].Signature())
}

func TestGenerateExcludePreviousDropsUsedCodes(t *testing.T) {
	catalog := []CourseOffering{
		offering("x1", "X", RequiredMajor, "CSE", 3, slot(t, Monday, "09:00", "10:00")),
		offering("x2", "X", RequiredMajor, "CSE", 3, slot(t, Tuesday, "09:00", "10:00")),
		offering("y1", "Y", RequiredMajor, "CSE", 3, slot(t, Wednesday, "09:00", "10:00")),
		offering("z1", "Z", RequiredMajor, "CSE", 3, slot(t, Thursday, "09:00", "10:00")),
	}
	c := DefaultConstraints("CSE")
	c.MaxCredits = 6
	c.Options.Diversification = DiversifyExcludePrevious

	got, err := Generate(catalog, c)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"x1", "x2"}, got[0].IDs())
	assert.Equal(t, []string{"y1", "z1"}, got[1].IDs())
}

func TestGenerateShuffleKeepsBaselineFirst(t *testing.T) {
	catalog := denseCatalog(t)
	base := DefaultConstraints("CSE")
	base.Options.Diversification = DiversifyNone
	baseline, err := Generate(catalog, base)
	require.NoError(t, err)
	require.NotEmpty(t, baseline)

	shuffled := DefaultConstraints("CSE")
	shuffled.Options.Diversification = DiversifyShuffle
	shuffled.Options.Seed = 99
	got, err := Generate(catalog, shuffled)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, baseline[0].IDs(), got[0].IDs())

	seen := map[string]bool{}
	for _, cand := range got {
		assert.False(t, seen[cand.Signature()], "duplicate variant")
		seen[cand.Signature()] = true
	}
}

func TestGeneratePrefersProfessorSection(t *testing.T) {
	catalog := sectionCatalog(t)
	catalog[1].Professor = "Kim Minsu"
	c := DefaultConstraints("CSE")
	c.Options.UniqueCourseCodes = true
	c.Options.PreferProfessors = []string{"kim minsu"}

	got, err := Generate(catalog, c)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, []string{"cse2010-b", "gen-101"}, got[0].IDs())
}

func TestGenerateEmptyPool(t *testing.T) {
	c := DefaultConstraints("CSE")
	c.CompletedCourseIDs = []string{"cse2010-a", "cse2010-b", "gen-101"}

	got, err := Generate(sectionCatalog(t), c)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerateNothingFitsCredits(t *testing.T) {
	catalog := []CourseOffering{
		offering("heavy", "H", RequiredMajor, "CSE", 20, slot(t, Monday, "09:00", "10:00")),
	}
	got, err := Generate(catalog, DefaultConstraints("CSE"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGenerateValidation(t *testing.T) {
	catalog := sectionCatalog(t)

	cases := map[string]func(c *Constraints, cat []CourseOffering) []CourseOffering{
		"zero max credits": func(c *Constraints, cat []CourseOffering) []CourseOffering {
			c.MaxCredits = 0
			return cat
		},
		"zero variants": func(c *Constraints, cat []CourseOffering) []CourseOffering {
			c.VariantCount = 0
			return cat
		},
		"unknown mode": func(c *Constraints, cat []CourseOffering) []CourseOffering {
			c.Options.ConflictMode = "fuzzy"
			return cat
		},
		"bad block": func(c *Constraints, cat []CourseOffering) []CourseOffering {
			c.ExcludedBlocks = []HourBlock{{Day: Weekday(6), Hour: 9}}
			return cat
		},
		"duplicate id": func(c *Constraints, cat []CourseOffering) []CourseOffering {
			return append(cat, cat[0])
		},
		"inverted slot": func(c *Constraints, cat []CourseOffering) []CourseOffering {
			bad := offering("bad", "BAD", RequiredMajor, "CSE", 3, TimeSlot{Day: Monday, Start: MustClock("11:00"), End: MustClock("10:00")})
			return append(cat, bad)
		},
		"zero credits": func(c *Constraints, cat []CourseOffering) []CourseOffering {
			return append(cat, offering("free", "FREE", RequiredMajor, "CSE", 0))
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := DefaultConstraints("CSE")
			cat := mutate(&c, append([]CourseOffering(nil), catalog...))

			got, err := Generate(cat, c)
			require.Error(t, err)
			assert.Nil(t, got)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Equal(t, http.StatusBadRequest, appErr.Status)
		})
	}
}

func TestParseOptions(t *testing.T) {
	mode, err := ParseConflictMode("")
	require.NoError(t, err)
	assert.Equal(t, ConflictStartKey, mode)
	_, err = ParseConflictMode("overlap")
	assert.Error(t, err)

	div, err := ParseDiversification("")
	require.NoError(t, err)
	assert.Equal(t, DiversifyRotate, div)
	div, err = ParseDiversification("exclude-previous")
	require.NoError(t, err)
	assert.Equal(t, DiversifyExcludePrevious, div)
	_, err = ParseDiversification("random")
	assert.Error(t, err)
}
