package timetable

import "fmt"

// ConflictMode selects how slot collisions are detected.
type ConflictMode string

const (
	// ConflictStartKey matches on identical (day, start) keys and, for
	// exclusions, on the slot's start hour. This is the reference policy.
	ConflictStartKey ConflictMode = "start"
	// ConflictInterval checks true [start,end) overlap.
	ConflictInterval ConflictMode = "interval"
)

// Diversification selects how successive variants differ.
type Diversification string

const (
	// DiversifyNone reruns the identical pipeline for every variant.
	DiversifyNone Diversification = "none"
	// DiversifyRotate rotates each category tier by the variant index.
	DiversifyRotate Diversification = "rotate"
	// DiversifyExcludePrevious drops the course codes picked by the previous variant.
	DiversifyExcludePrevious Diversification = "exclude-previous"
	// DiversifyShuffle shuffles each category tier with a seeded source.
	DiversifyShuffle Diversification = "shuffle"
)

// ParseConflictMode maps a config value to a ConflictMode.
func ParseConflictMode(raw string) (ConflictMode, error) {
	switch ConflictMode(raw) {
	case "", ConflictStartKey:
		return ConflictStartKey, nil
	case ConflictInterval:
		return ConflictInterval, nil
	}
	return "", fmt.Errorf("unknown conflict mode %q", raw)
}

// ParseDiversification maps a config value to a Diversification.
func ParseDiversification(raw string) (Diversification, error) {
	switch Diversification(raw) {
	case "", DiversifyRotate:
		return DiversifyRotate, nil
	case DiversifyNone, DiversifyExcludePrevious, DiversifyShuffle:
		return Diversification(raw), nil
	}
	return "", fmt.Errorf("unknown diversification %q", raw)
}

// Options carries the opt-in policy switches of the engine.
type Options struct {
	ConflictMode      ConflictMode    `validate:"omitempty,oneof=start interval"`
	UniqueCourseCodes bool
	Diversification   Diversification `validate:"omitempty,oneof=none rotate exclude-previous shuffle"`
	Seed              int64
	Priority          Priority
	// PreferProfessors moves sections taught by these professors to the
	// front of their category tier. Matching ignores case.
	PreferProfessors []string
}

// Constraints are the per-request inputs of a recommendation.
type Constraints struct {
	Department string
	// RestrictGenEdToDepartment drops general-education offerings of other
	// departments. The zero value admits them.
	RestrictGenEdToDepartment bool
	ExcludedBlocks            []HourBlock
	CompletedCourseIDs        []string
	// MaxGrade drops offerings aimed at a higher year. Zero disables it and
	// offerings without a grade always pass.
	MaxGrade int `validate:"gte=0"`
	// SkipFullSections drops offerings whose enrolment reached capacity.
	SkipFullSections bool
	MaxCredits                int `validate:"gt=0"`
	MaxCourseCount            int `validate:"gt=0"`
	VariantCount              int `validate:"gt=0"`
	Options                   Options
}

// Reference defaults.
const (
	DefaultMaxCredits     = 18
	DefaultMaxCourseCount = 6
	DefaultVariantCount   = 3
)

// DefaultConstraints returns the reference constraint set for a department.
func DefaultConstraints(department string) Constraints {
	return Constraints{
		Department:     department,
		MaxCredits:     DefaultMaxCredits,
		MaxCourseCount: DefaultMaxCourseCount,
		VariantCount:   DefaultVariantCount,
		Options: Options{
			ConflictMode:    ConflictStartKey,
			Diversification: DiversifyRotate,
		},
	}
}

func (c Constraints) conflictMode() ConflictMode {
	if c.Options.ConflictMode == "" {
		return ConflictStartKey
	}
	return c.Options.ConflictMode
}

func (c Constraints) diversification() Diversification {
	if c.Options.Diversification == "" {
		return DiversifyRotate
	}
	return c.Options.Diversification
}
