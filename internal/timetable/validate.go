package timetable

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
)

var validate = validator.New()

// ValidateConstraints rejects out-of-range limits and malformed blocks.
func ValidateConstraints(c Constraints) error {
	if err := validate.Struct(c); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recommendation constraints")
	}
	for _, block := range c.ExcludedBlocks {
		if !block.Day.Valid() || block.Hour < 0 || block.Hour > 23 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid excluded block %s %d", block.Day, block.Hour))
		}
	}
	return nil
}

// ValidateCatalog checks every offering and id uniqueness.
func ValidateCatalog(catalog []CourseOffering) error {
	seen := make(map[string]struct{}, len(catalog))
	for _, offering := range catalog {
		if err := offering.Validate(); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course offering")
		}
		if _, dup := seen[offering.ID]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate offering id %s", offering.ID))
		}
		seen[offering.ID] = struct{}{}
	}
	return nil
}
