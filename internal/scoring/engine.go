// Package scoring computes pairwise compatibility. Everything here is pure:
// the same inputs, including AsOf, always produce the same result.
package scoring

import (
	"time"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

// Participant bundles everything the engine knows about one member of a
// pair. Only Profile is required.
type Participant struct {
	Profile      *domain.Profile
	Assessment   *domain.CompatibilityAssessment
	Dealbreakers *domain.DealbreakerPreferences
	Taste        *domain.TasteVector
}

// Input is one pair to score. Ratings may contain unrelated rows; only the
// ones exchanged between A and B are used.
type Input struct {
	A       Participant
	B       Participant
	Ratings []domain.DateRating
	Weights domain.MatchWeights
	AsOf    time.Time
}

// Result is either a rejection or a score ready to cache.
type Result struct {
	Rejected  bool
	Rejection *Rejection
	Score     *domain.CompatibilityScore
}

// Score runs the dealbreaker gate and, if it passes, blends the component
// scores into directional and final scores. Participants are reordered so
// that the lexicographically smaller user id always occupies slot A.
func Score(in Input) Result {
	a, b := in.A, in.B
	if domain.Less(b.Profile.UserID, a.Profile.UserID) {
		a, b = b, a
	}

	if rej := CheckDealbreakers(a, b, in.AsOf); rej != nil {
		return Result{Rejected: true, Rejection: rej}
	}

	psych := Psychological(a.Assessment, b.Assessment)
	chem := Chemistry(a.Profile, b.Profile, in.Ratings)

	aToB := domain.ComponentScores{
		LifeAlignment: LifeAlignment(a.Profile, b.Profile),
		Psychological: psych,
		Chemistry:     chem,
		TasteFit:      TasteFit(a, b, in.AsOf),
		Completeness:  Completeness(b),
	}
	bToA := domain.ComponentScores{
		LifeAlignment: LifeAlignment(b.Profile, a.Profile),
		Psychological: psych,
		Chemistry:     chem,
		TasteFit:      TasteFit(b, a, in.AsOf),
		Completeness:  Completeness(a),
	}

	scoreAToB := Blend(aToB, in.Weights)
	scoreBToA := Blend(bToA, in.Weights)
	final := clamp01((scoreAToB + scoreBToA) / 2)

	return Result{
		Score: &domain.CompatibilityScore{
			UserA:      a.Profile.UserID,
			UserB:      b.Profile.UserID,
			ScoreAToB:  scoreAToB,
			ScoreBToA:  scoreBToA,
			FinalScore: final,
			Breakdown: domain.ScoreBreakdown{
				AToB:        directional(domain.SlotA, scoreAToB, aToB),
				BToA:        directional(domain.SlotB, scoreBToA, bToA),
				Explanation: Explain(aToB, bToA),
			},
		},
	}
}

// Blend applies the weights to one perspective's components. The weight not
// allocated to any component contributes a flat neutral 0.5.
func Blend(c domain.ComponentScores, w domain.MatchWeights) float64 {
	s := w.LifeAlignment*c.LifeAlignment +
		w.Psychological*c.Psychological +
		w.Chemistry*c.Chemistry +
		w.TasteLearning*c.TasteFit +
		w.ProfileCompleteness*c.Completeness +
		w.Remainder()*Neutral
	return clamp01(s)
}

func directional(perspective domain.Slot, score float64, c domain.ComponentScores) domain.DirectionalBreakdown {
	return domain.DirectionalBreakdown{
		Perspective: perspective,
		Score:       score,
		Components:  c,
		Bands:       Bands(c),
	}
}
