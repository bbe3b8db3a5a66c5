package domain

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Opposite returns the other gender, or "" when g is unknown.
func (g Gender) Opposite() Gender {
	switch g {
	case GenderMale:
		return GenderFemale
	case GenderFemale:
		return GenderMale
	}
	return ""
}

type SexualPreference string

const (
	PreferenceMen   SexualPreference = "men"
	PreferenceWomen SexualPreference = "women"
	PreferenceBoth  SexualPreference = "both"
)

type PracticeFrequency string

const (
	PracticeNever     PracticeFrequency = "never"
	PracticeRarely    PracticeFrequency = "rarely"
	PracticeSometimes PracticeFrequency = "sometimes"
	PracticeWeekly    PracticeFrequency = "weekly"
	PracticeDaily     PracticeFrequency = "daily"
)

// Ordinal places the frequency on a 0..4 scale.
func (f PracticeFrequency) Ordinal() (int, bool) {
	switch f {
	case PracticeNever:
		return 0, true
	case PracticeRarely:
		return 1, true
	case PracticeSometimes:
		return 2, true
	case PracticeWeekly:
		return 3, true
	case PracticeDaily:
		return 4, true
	}
	return 0, false
}

type ChildrenIntent string

const (
	ChildrenNo   ChildrenIntent = "no"
	ChildrenOpen ChildrenIntent = "open"
	ChildrenYes  ChildrenIntent = "yes"
)

// Ordinal places the intent on a 0..2 scale.
func (c ChildrenIntent) Ordinal() (int, bool) {
	switch c {
	case ChildrenNo:
		return 0, true
	case ChildrenOpen:
		return 1, true
	case ChildrenYes:
		return 2, true
	}
	return 0, false
}

// Profile holds the declared attributes of a user. Nil pointers mean the
// user has not filled the field in.
type Profile struct {
	UserID             uuid.UUID          `json:"user_id" db:"user_id"`
	DisplayName        string             `json:"display_name" db:"display_name" validate:"max=100"`
	Faith              *string            `json:"faith" db:"faith" validate:"omitempty,max=64"`
	ReligionImportance *int               `json:"religion_importance" db:"religion_importance" validate:"omitempty,min=1,max=5"`
	PracticeFrequency  *PracticeFrequency `json:"practice_frequency" db:"practice_frequency" validate:"omitempty,oneof=never rarely sometimes weekly daily"`
	WantsChildren      *ChildrenIntent    `json:"wants_children" db:"wants_children" validate:"omitempty,oneof=yes no open"`
	CareerAmbition     *int               `json:"career_ambition" db:"career_ambition" validate:"omitempty,min=1,max=5"`
	WorkLifePhilosophy *int               `json:"work_life_philosophy" db:"work_life_philosophy" validate:"omitempty,min=1,max=5"`
	EducationLevel     *int               `json:"education_level" db:"education_level" validate:"omitempty,min=1,max=5"`
	Gender             Gender             `json:"gender" db:"gender" validate:"omitempty,oneof=male female"`
	SexualPreference   *SexualPreference  `json:"sexual_preference" db:"sexual_preference" validate:"omitempty,oneof=men women both"`
	Country            *string            `json:"country" db:"country" validate:"omitempty,max=64"`
	DateOfBirth        *time.Time         `json:"date_of_birth" db:"date_of_birth"`
	IsActive           bool               `json:"is_active" db:"is_active"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
}

// AgeAt returns the age in whole years at t.
func (p *Profile) AgeAt(t time.Time) (int, bool) {
	if p == nil || p.DateOfBirth == nil {
		return 0, false
	}
	dob := p.DateOfBirth.UTC()
	t = t.UTC()
	age := t.Year() - dob.Year()
	if t.Month() < dob.Month() || (t.Month() == dob.Month() && t.Day() < dob.Day()) {
		age--
	}
	return age, true
}

// SeekedGenders returns the genders p is interested in. An unset preference
// falls back to the opposite of p's own gender.
func (p *Profile) SeekedGenders() []Gender {
	if p.SexualPreference == nil || *p.SexualPreference == "" {
		if opp := p.Gender.Opposite(); opp != "" {
			return []Gender{opp}
		}
		return nil
	}
	switch *p.SexualPreference {
	case PreferenceMen:
		return []Gender{GenderMale}
	case PreferenceWomen:
		return []Gender{GenderFemale}
	case PreferenceBoth:
		return []Gender{GenderMale, GenderFemale}
	}
	return nil
}

// Seeks reports whether p's sexual preference admits a partner of gender g.
func (p *Profile) Seeks(g Gender) bool {
	for _, s := range p.SeekedGenders() {
		if s == g {
			return true
		}
	}
	return false
}
