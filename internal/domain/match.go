package domain

import (
	"time"

	"github.com/google/uuid"
)

type Choice string

const (
	ChoiceDate   Choice = "date"
	ChoiceFriend Choice = "friend"
	ChoiceNo     Choice = "no"
)

// Valid reports whether c is one of the accepted choices.
func (c Choice) Valid() bool {
	return c == ChoiceDate || c == ChoiceFriend || c == ChoiceNo
}

// Positive reports whether c expresses interest.
func (c Choice) Positive() bool {
	return c == ChoiceDate || c == ChoiceFriend
}

// MatchChoice is ScorerID's private verdict on ScoredID at an event.
type MatchChoice struct {
	EventID  uuid.UUID `json:"event_id" db:"event_id"`
	ScorerID uuid.UUID `json:"scorer_id" db:"scorer_id"`
	ScoredID uuid.UUID `json:"scored_id" db:"scored_id"`
	Choice   Choice    `json:"choice" db:"choice"`
	ShareFlags
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ResultType string

const (
	ResultMutualDate   ResultType = "mutual_date"
	ResultMutualFriend ResultType = "mutual_friend"
	ResultNoMatch      ResultType = "no_match"
)

// Resolve combines two choices into a result. It is symmetric in x and y.
func Resolve(x, y Choice) ResultType {
	switch {
	case x == ChoiceNo || y == ChoiceNo:
		return ResultNoMatch
	case x == ChoiceDate && y == ChoiceDate:
		return ResultMutualDate
	case x.Positive() && y.Positive():
		return ResultMutualFriend
	}
	return ResultNoMatch
}

// MatchResult is derived once both members of a canonical pair submitted.
// Each side keeps its own share flags exactly as chosen.
type MatchResult struct {
	EventID    uuid.UUID  `json:"event_id" db:"event_id"`
	UserA      uuid.UUID  `json:"user_a" db:"user_a"`
	UserB      uuid.UUID  `json:"user_b" db:"user_b"`
	ResultType ResultType `json:"result_type" db:"result_type"`
	ShareA     ShareFlags `json:"share_a"`
	ShareB     ShareFlags `json:"share_b"`
	ResolvedAt time.Time  `json:"resolved_at" db:"resolved_at"`
}

// HasUser reports whether userID is a member of the result.
func (m *MatchResult) HasUser(userID uuid.UUID) bool {
	return m.UserA == userID || m.UserB == userID
}

// GetOtherUserID returns the counterpart of userID.
func (m *MatchResult) GetOtherUserID(userID uuid.UUID) (uuid.UUID, bool) {
	if m.UserA == userID {
		return m.UserB, true
	}
	if m.UserB == userID {
		return m.UserA, true
	}
	return uuid.Nil, false
}

// SharedWith returns the flags the counterpart of userID chose to reveal.
func (m *MatchResult) SharedWith(userID uuid.UUID) ShareFlags {
	if m.UserA == userID {
		return m.ShareB
	}
	return m.ShareA
}

// ResolvePair builds the result for two choices made about each other.
func ResolvePair(eventID uuid.UUID, x, y *MatchChoice, at time.Time) *MatchResult {
	key, xIsA := CanonicalPair(x.ScorerID, y.ScorerID)
	res := &MatchResult{
		EventID:    eventID,
		UserA:      key.A,
		UserB:      key.B,
		ResultType: Resolve(x.Choice, y.Choice),
		ResolvedAt: at,
	}
	if xIsA {
		res.ShareA, res.ShareB = x.ShareFlags, y.ShareFlags
	} else {
		res.ShareA, res.ShareB = y.ShareFlags, x.ShareFlags
	}
	return res
}
