package domain

import (
	"time"

	"github.com/google/uuid"
)

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationAttended  RegistrationStatus = "attended"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// Participates reports whether the registration counts as a roster member.
func (s RegistrationStatus) Participates() bool {
	return s == RegistrationConfirmed || s == RegistrationAttended
}

type Event struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Title            string     `json:"title" db:"title"`
	StartsAt         time.Time  `json:"starts_at" db:"starts_at"`
	MatchingOpen     bool       `json:"matching_open" db:"matching_open"`
	MatchingLocked   bool       `json:"matching_locked" db:"matching_locked"`
	MatchingDeadline *time.Time `json:"matching_deadline" db:"matching_deadline"`
}

// SubmissionWindowOpen reports whether choices are accepted at t.
func (e *Event) SubmissionWindowOpen(t time.Time) bool {
	if !e.MatchingOpen || e.MatchingLocked {
		return false
	}
	if e.MatchingDeadline != nil && !t.Before(*e.MatchingDeadline) {
		return false
	}
	return true
}

type EventRegistration struct {
	EventID uuid.UUID          `json:"event_id" db:"event_id"`
	UserID  uuid.UUID          `json:"user_id" db:"user_id"`
	Status  RegistrationStatus `json:"status" db:"status"`
}

// ShareFlags control which contact channels a person reveals to a match.
type ShareFlags struct {
	Email     bool `json:"share_email" db:"share_email"`
	Phone     bool `json:"share_phone" db:"share_phone"`
	WhatsApp  bool `json:"share_whatsapp" db:"share_whatsapp"`
	Instagram bool `json:"share_instagram" db:"share_instagram"`
	Facebook  bool `json:"share_facebook" db:"share_facebook"`
}

// PrivacyDefaults prefill ShareFlags on every new choice form.
type PrivacyDefaults struct {
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	ShareFlags
}

// DefaultShareFlags is used for users without stored privacy defaults.
func DefaultShareFlags() ShareFlags {
	return ShareFlags{Email: true}
}
