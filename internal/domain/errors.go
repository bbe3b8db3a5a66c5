package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrScoreNotFound       = errors.New("compatibility score not computed")
	ErrRatingAlreadyExists = errors.New("rating already submitted for this date")
	ErrCannotRateSelf      = errors.New("cannot rate yourself")
	ErrNotOnRoster         = errors.New("user is not on the event roster")
	ErrVIPRequired         = errors.New("active VIP subscription required")
	ErrInvalidWeights      = errors.New("invalid match weights")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidToken        = errors.New("invalid token")
	ErrForbidden           = errors.New("forbidden")
)

// SubmissionReason names why a choice submission was turned down.
type SubmissionReason string

const (
	ReasonNotRegistered        SubmissionReason = "not_registered"
	ReasonWindowClosed         SubmissionReason = "window_closed"
	ReasonAlreadySubmitted     SubmissionReason = "already_submitted"
	ReasonIncompleteSubmission SubmissionReason = "incomplete_submission"
	ReasonUnexpectedCandidate  SubmissionReason = "unexpected_candidate"
	ReasonDuplicateCandidate   SubmissionReason = "duplicate_candidate"
	ReasonInvalidChoice        SubmissionReason = "invalid_choice"
)

// SubmissionError is a protocol violation on submit. Nothing was written.
type SubmissionError struct {
	Reason SubmissionReason
	Detail string
}

func (e *SubmissionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("submission rejected: %s", e.Reason)
	}
	return fmt.Sprintf("submission rejected: %s: %s", e.Reason, e.Detail)
}

// Rejected builds a SubmissionError.
func Rejected(reason SubmissionReason, detail string) error {
	return &SubmissionError{Reason: reason, Detail: detail}
}

// RejectionReason extracts the reason from err, if it is a SubmissionError.
func RejectionReason(err error) (SubmissionReason, bool) {
	var se *SubmissionError
	if errors.As(err, &se) {
		return se.Reason, true
	}
	return "", false
}
