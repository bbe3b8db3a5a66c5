package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// DealbreakerPreferences are hard constraints a user puts on partners.
// Every nil / false field means "no constraint".
type DealbreakerPreferences struct {
	UserID              uuid.UUID `json:"user_id" db:"user_id"`
	PreferredAgeMin     *int      `json:"preferred_age_min" db:"preferred_age_min" validate:"omitempty,min=18,max=120"`
	PreferredAgeMax     *int      `json:"preferred_age_max" db:"preferred_age_max" validate:"omitempty,min=18,max=120"`
	ReligionMustMatch   bool      `json:"religion_must_match" db:"religion_must_match"`
	AcceptableReligions []string  `json:"acceptable_religions" validate:"omitempty,dive,max=64"`
	MustWantChildren    bool      `json:"must_want_children" db:"must_want_children"`
	MinEducationLevel   *int      `json:"min_education_level" db:"min_education_level" validate:"omitempty,min=1,max=5"`
}

// CheckAgeRange rejects an inverted age range.
func (d *DealbreakerPreferences) CheckAgeRange() error {
	if d.PreferredAgeMin != nil && d.PreferredAgeMax != nil && *d.PreferredAgeMin > *d.PreferredAgeMax {
		return fmt.Errorf("%w: preferred_age_min is greater than preferred_age_max", ErrInvalidInput)
	}
	return nil
}
