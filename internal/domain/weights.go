package domain

import (
	"fmt"
	"math"
)

// MaxComponentWeight caps any single component weight.
const MaxComponentWeight = 0.5

const weightEpsilon = 1e-9

// MatchWeights is the immutable blend used by the scoring engine. The part
// of 1 not allocated to a component contributes a flat neutral 0.5.
type MatchWeights struct {
	LifeAlignment       float64 `json:"life_alignment" db:"life_alignment"`
	Psychological       float64 `json:"psychological" db:"psychological"`
	Chemistry           float64 `json:"chemistry" db:"chemistry"`
	TasteLearning       float64 `json:"taste_learning" db:"taste_learning"`
	ProfileCompleteness float64 `json:"profile_completeness" db:"profile_completeness"`
}

// DefaultMatchWeights is used until an operator stores a config.
func DefaultMatchWeights() MatchWeights {
	return MatchWeights{
		LifeAlignment:       0.30,
		Psychological:       0.25,
		Chemistry:           0.20,
		TasteLearning:       0.15,
		ProfileCompleteness: 0.10,
	}
}

// Sum returns the total allocated weight.
func (w MatchWeights) Sum() float64 {
	return w.LifeAlignment + w.Psychological + w.Chemistry + w.TasteLearning + w.ProfileCompleteness
}

// Remainder is the unallocated share that scores as neutral.
func (w MatchWeights) Remainder() float64 {
	r := 1 - w.Sum()
	if r < 0 {
		return 0
	}
	return r
}

// Validate enforces 0 <= weight <= 0.5 for each component and sum <= 1.
func (w MatchWeights) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"life_alignment", w.LifeAlignment},
		{"psychological", w.Psychological},
		{"chemistry", w.Chemistry},
		{"taste_learning", w.TasteLearning},
		{"profile_completeness", w.ProfileCompleteness},
	}
	for _, n := range named {
		if math.IsNaN(n.value) || n.value < 0 || n.value > MaxComponentWeight+weightEpsilon {
			return fmt.Errorf("%w: %s=%.4f must be within [0, %.1f]", ErrInvalidWeights, n.name, n.value, MaxComponentWeight)
		}
	}
	if w.Sum() > 1+weightEpsilon {
		return fmt.Errorf("%w: weights sum to %.4f, must not exceed 1", ErrInvalidWeights, w.Sum())
	}
	return nil
}
