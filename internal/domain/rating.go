package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateRating is what FromUserID thought of ToUserID after a date at EventID.
// Append-only: one per directed pair per event.
type DateRating struct {
	ID                  int64     `json:"id" db:"id"`
	EventID             uuid.UUID `json:"event_id" db:"event_id"`
	FromUserID          uuid.UUID `json:"from_user_id" db:"from_user_id"`
	ToUserID            uuid.UUID `json:"to_user_id" db:"to_user_id"`
	WouldMeetAgain      bool      `json:"would_meet_again" db:"would_meet_again"`
	ConversationQuality int       `json:"conversation_quality" db:"conversation_quality" validate:"min=1,max=5"`
	LongTermPotential   int       `json:"long_term_potential" db:"long_term_potential" validate:"min=1,max=5"`
	PhysicalChemistry   int       `json:"physical_chemistry" db:"physical_chemistry" validate:"min=1,max=5"`
	ComfortLevel        int       `json:"comfort_level" db:"comfort_level" validate:"min=1,max=5"`
	ValuesAlignment     int       `json:"values_alignment" db:"values_alignment" validate:"min=1,max=5"`
	EnergyCompatibility int       `json:"energy_compatibility" db:"energy_compatibility" validate:"min=1,max=5"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// IsPositive reports whether the rater liked the date: they want to meet
// again, or rated conversation, long-term potential or physical chemistry
// at 4 or above.
func (r *DateRating) IsPositive() bool {
	return r.WouldMeetAgain ||
		r.ConversationQuality >= 4 ||
		r.LongTermPotential >= 4 ||
		r.PhysicalChemistry >= 4
}

// Axes returns the six 1..5 axes in a fixed order.
func (r *DateRating) Axes() [6]int {
	return [6]int{
		r.ConversationQuality,
		r.LongTermPotential,
		r.PhysicalChemistry,
		r.ComfortLevel,
		r.ValuesAlignment,
		r.EnergyCompatibility,
	}
}

// Involves reports whether the rating was exchanged between a and b, in
// either direction.
func (r *DateRating) Involves(a, b uuid.UUID) bool {
	return (r.FromUserID == a && r.ToUserID == b) || (r.FromUserID == b && r.ToUserID == a)
}
