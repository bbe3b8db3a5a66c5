package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// Slot tags which member of a canonical pair a directional value belongs to.
type Slot string

const (
	SlotA Slot = "a"
	SlotB Slot = "b"
)

// PairKey is an unordered user pair with the lexicographically smaller id
// always in A.
type PairKey struct {
	A uuid.UUID `json:"user_a"`
	B uuid.UUID `json:"user_b"`
}

// Less orders ids by their canonical string form.
func Less(x, y uuid.UUID) bool {
	return x.String() < y.String()
}

// CanonicalPair builds the key for x and y and reports whether x landed in
// slot A.
func CanonicalPair(x, y uuid.UUID) (PairKey, bool) {
	if Less(y, x) {
		return PairKey{A: y, B: x}, false
	}
	return PairKey{A: x, B: y}, true
}

// SlotOf returns the slot id occupies in k.
func (k PairKey) SlotOf(id uuid.UUID) (Slot, bool) {
	switch id {
	case k.A:
		return SlotA, true
	case k.B:
		return SlotB, true
	}
	return "", false
}

// Other returns the member of k that is not id.
func (k PairKey) Other(id uuid.UUID) uuid.UUID {
	if id == k.A {
		return k.B
	}
	return k.A
}

type Band string

const (
	BandVeryStrong Band = "very_strong"
	BandStrong     Band = "strong"
	BandModerate   Band = "moderate"
	BandWeak       Band = "weak"
	BandMismatch   Band = "mismatch"
)

// BandFor maps a [0,1] score onto its qualitative band.
func BandFor(score float64) Band {
	switch {
	case score >= 0.85:
		return BandVeryStrong
	case score >= 0.65:
		return BandStrong
	case score >= 0.45:
		return BandModerate
	case score >= 0.25:
		return BandWeak
	default:
		return BandMismatch
	}
}

// ComponentScores are the five component values seen from one member.
type ComponentScores struct {
	LifeAlignment float64 `json:"life_alignment"`
	Psychological float64 `json:"psychological"`
	Chemistry     float64 `json:"chemistry"`
	TasteFit      float64 `json:"taste_fit"`
	Completeness  float64 `json:"completeness"`
}

type ComponentBands struct {
	LifeAlignment Band `json:"life_alignment"`
	Psychological Band `json:"psychological"`
	Chemistry     Band `json:"chemistry"`
	TasteFit      Band `json:"taste_fit"`
	Completeness  Band `json:"completeness"`
}

// DirectionalBreakdown is one member's perspective. Perspective names the
// slot of the evaluating member, so "a" holds score_a_to_b.
type DirectionalBreakdown struct {
	Perspective Slot            `json:"perspective"`
	Score       float64         `json:"score"`
	Components  ComponentScores `json:"components"`
	Bands       ComponentBands  `json:"bands"`
}

// ScoreBreakdown is persisted as JSON next to the cached scores.
type ScoreBreakdown struct {
	AToB        DirectionalBreakdown `json:"a_to_b"`
	BToA        DirectionalBreakdown `json:"b_to_a"`
	Explanation []string             `json:"explanation"`
}

// Value implements driver.Valuer. It yields a string so lib/pq sends it as
// text into the jsonb column.
func (b ScoreBreakdown) Value() (driver.Value, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (b *ScoreBreakdown) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	case nil:
		*b = ScoreBreakdown{}
		return nil
	}
	return errors.New("score breakdown: unsupported column type")
}

// CompatibilityScore is a cached result for a canonical pair. A missing row
// means "not computed yet", never "zero".
type CompatibilityScore struct {
	UserA      uuid.UUID      `json:"user_a" db:"user_a"`
	UserB      uuid.UUID      `json:"user_b" db:"user_b"`
	ScoreAToB  float64        `json:"score_a_to_b" db:"score_a_to_b"`
	ScoreBToA  float64        `json:"score_b_to_a" db:"score_b_to_a"`
	FinalScore float64        `json:"final_score" db:"final_score"`
	Breakdown  ScoreBreakdown `json:"breakdown" db:"breakdown"`
}

// Key returns the canonical pair of the row.
func (s *CompatibilityScore) Key() PairKey {
	return PairKey{A: s.UserA, B: s.UserB}
}

// ScoreFrom returns the directional score from viewer's perspective.
func (s *CompatibilityScore) ScoreFrom(viewer uuid.UUID) (float64, bool) {
	switch viewer {
	case s.UserA:
		return s.ScoreAToB, true
	case s.UserB:
		return s.ScoreBToA, true
	}
	return 0, false
}
