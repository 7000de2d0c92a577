package timetable

import (
	"fmt"
	"slices"
	"strings"
)

// Category classifies an offering for ranking purposes.
type Category int

const (
	// CategoryUnknown is the fallback for labels the catalog does not define.
	CategoryUnknown Category = iota
	RequiredMajor
	ElectiveMajor
	CoreGenEd
	BasicGenEd
	GeneralGenEd
)

var categoryCodes = map[Category]string{
	CategoryUnknown: "UNKNOWN",
	RequiredMajor:   "REQUIRED_MAJOR",
	ElectiveMajor:   "ELECTIVE_MAJOR",
	CoreGenEd:       "CORE_GEN_ED",
	BasicGenEd:      "BASIC_GEN_ED",
	GeneralGenEd:    "GENERAL_GEN_ED",
}

var categoryLabels = map[string]Category{
	"REQUIRED_MAJOR": RequiredMajor,
	"ELECTIVE_MAJOR": ElectiveMajor,
	"CORE_GEN_ED":    CoreGenEd,
	"BASIC_GEN_ED":   BasicGenEd,
	"GENERAL_GEN_ED": GeneralGenEd,
	"전공필수":           RequiredMajor,
	"전공선택":           ElectiveMajor,
	"핵심교양":           CoreGenEd,
	"기초교양":           BasicGenEd,
	"일반교양":           GeneralGenEd,
}

// ParseCategory maps a catalog label to a Category. Unrecognised labels map
// to CategoryUnknown rather than failing.
func ParseCategory(raw string) Category {
	if c, ok := categoryLabels[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return c
	}
	return CategoryUnknown
}

func (c Category) String() string {
	if code, ok := categoryCodes[c]; ok {
		return code
	}
	return categoryCodes[CategoryUnknown]
}

// IsGenEd reports whether the category is one of the general-education ones,
// which are admitted regardless of department.
func (c Category) IsGenEd() bool {
	switch c {
	case CoreGenEd, BasicGenEd, GeneralGenEd:
		return true
	default:
		return false
	}
}

// Labels lists every catalog label that parses to c, sorted.
func (c Category) Labels() []string {
	var out []string
	for label, cat := range categoryLabels {
		if cat == c {
			out = append(out, label)
		}
	}
	slices.Sort(out)
	return out
}

// MarshalText encodes the category as its canonical code.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes any label accepted by ParseCategory.
func (c *Category) UnmarshalText(text []byte) error {
	*c = ParseCategory(string(text))
	return nil
}

// CourseOffering is one scheduled section of a course. Values are treated as
// read-only by the engine.
type CourseOffering struct {
	ID         string
	CourseCode string
	Section    string
	Name       string
	Professor  string
	Room       string
	Credits    int
	Category   Category
	Department string
	Grade      int
	TimeSlots  []TimeSlot
	Capacity   int
	Enrolled   int
}

// Full reports whether enrolment reached a known capacity. A zero capacity
// means the catalog does not track it.
func (o CourseOffering) Full() bool {
	return o.Capacity > 0 && o.Enrolled >= o.Capacity
}

// Validate enforces the offering invariants: positive credits, well formed
// slots and no overlap between the offering's own slots.
func (o CourseOffering) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return fmt.Errorf("offering id is required")
	}
	if o.Credits <= 0 {
		return fmt.Errorf("offering %s must have positive credits", o.ID)
	}
	for i, slot := range o.TimeSlots {
		if err := slot.Validate(); err != nil {
			return fmt.Errorf("offering %s: %w", o.ID, err)
		}
		for _, other := range o.TimeSlots[:i] {
			if slot.Overlaps(other) {
				return fmt.Errorf("offering %s has overlapping slots %s and %s", o.ID, other, slot)
			}
		}
	}
	return nil
}
