package domain

import (
	"time"

	"github.com/google/uuid"
)

// MinTasteSamples is the number of positive ratings needed before a taste
// vector is written or used.
const MinTasteSamples = 3

// TasteVector is the running average of attributes of partners a user rated
// positively. Nil fields had no observations.
type TasteVector struct {
	UserID             uuid.UUID `json:"user_id" db:"user_id"`
	EducationLevel     *float64  `json:"education_level" db:"education_level"`
	ReligionImportance *float64  `json:"religion_importance" db:"religion_importance"`
	CareerAmbition     *float64  `json:"career_ambition" db:"career_ambition"`
	SocialEnergy       *float64  `json:"social_energy" db:"social_energy"`
	LifestylePace      *float64  `json:"lifestyle_pace" db:"lifestyle_pace"`
	ConversationDepth  *float64  `json:"conversation_depth" db:"conversation_depth"`
	AffectionStyle     *float64  `json:"affection_style" db:"affection_style"`
	AgeDifference      *float64  `json:"age_difference" db:"age_difference"`
	SampleCount        int       `json:"sample_count" db:"sample_count"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// Usable reports whether the vector has enough samples to score with.
func (t *TasteVector) Usable() bool {
	return t != nil && t.SampleCount >= MinTasteSamples
}
