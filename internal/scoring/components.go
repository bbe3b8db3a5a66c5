package scoring

import (
	"math"
	"time"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

// Neutral is substituted for any component whose inputs are missing.
const Neutral = 0.5

// Base weights of the life-alignment fields. Faith and practice are scaled
// by how much religion matters to the evaluator.
const (
	lifeWeightFaith              = 0.20
	lifeWeightReligionImportance = 0.15
	lifeWeightPractice           = 0.15
	lifeWeightChildren           = 0.20
	lifeWeightCareer             = 0.10
	lifeWeightWorkLife           = 0.10
	lifeWeightEducation          = 0.10
)

// ageDifferenceSpan is the signed age gap, in years, treated as maximal
// distance by the taste-fit scorer.
const ageDifferenceSpan = 20.0

type weightedSum struct {
	num float64
	den float64
}

func (w *weightedSum) add(weight, score float64) {
	w.num += weight * score
	w.den += weight
}

func (w *weightedSum) value() float64 {
	if w.den == 0 {
		return Neutral
	}
	return clamp01(w.num / w.den)
}

// LifeAlignment scores how well candidate's declared life preferences line
// up with evaluator's. Fields missing on either side drop out of the
// average instead of failing it.
func LifeAlignment(evaluator, candidate *domain.Profile) float64 {
	if evaluator == nil || candidate == nil {
		return Neutral
	}

	religionFactor := 1.0
	if evaluator.ReligionImportance != nil {
		religionFactor = 0.4 + 0.2*float64(*evaluator.ReligionImportance)
	}

	var sum weightedSum
	if evaluator.Faith != nil && candidate.Faith != nil {
		match := 0.0
		if normalizeFaith(*evaluator.Faith) == normalizeFaith(*candidate.Faith) {
			match = 1
		}
		sum.add(lifeWeightFaith*religionFactor, match)
	}
	if s, ok := scaleCloseness(evaluator.ReligionImportance, candidate.ReligionImportance); ok {
		sum.add(lifeWeightReligionImportance, s)
	}
	if evaluator.PracticeFrequency != nil && candidate.PracticeFrequency != nil {
		x, okX := evaluator.PracticeFrequency.Ordinal()
		y, okY := candidate.PracticeFrequency.Ordinal()
		if okX && okY {
			sum.add(lifeWeightPractice*religionFactor, ordinalCloseness(x, y, 4))
		}
	}
	if evaluator.WantsChildren != nil && candidate.WantsChildren != nil {
		x, okX := evaluator.WantsChildren.Ordinal()
		y, okY := candidate.WantsChildren.Ordinal()
		if okX && okY {
			sum.add(lifeWeightChildren, ordinalCloseness(x, y, 2))
		}
	}
	if s, ok := scaleCloseness(evaluator.CareerAmbition, candidate.CareerAmbition); ok {
		sum.add(lifeWeightCareer, s)
	}
	if s, ok := scaleCloseness(evaluator.WorkLifePhilosophy, candidate.WorkLifePhilosophy); ok {
		sum.add(lifeWeightWorkLife, s)
	}
	if s, ok := scaleCloseness(evaluator.EducationLevel, candidate.EducationLevel); ok {
		sum.add(lifeWeightEducation, s)
	}
	return sum.value()
}

// Psychological averages per-item agreement over the assessment. Similarity
// items reward close answers, complement items reward distant ones.
func Psychological(a, b *domain.CompatibilityAssessment) float64 {
	if a == nil || b == nil {
		return Neutral
	}
	total, n := 0.0, 0
	for i, item := range domain.AssessmentItems {
		x, okX := a.Answer(i)
		y, okY := b.Answer(i)
		if !okX || !okY {
			continue
		}
		distance := math.Abs(float64(x-y)) / 4
		if item.Polarity == domain.PolarityComplement {
			total += distance
		} else {
			total += 1 - distance
		}
		n++
	}
	if n == 0 {
		return Neutral
	}
	return clamp01(total / float64(n))
}

// Chemistry averages the normalized ratings exchanged between a and b in
// either direction, across all shared events.
func Chemistry(a, b *domain.Profile, ratings []domain.DateRating) float64 {
	if a == nil || b == nil {
		return Neutral
	}
	total, n := 0.0, 0
	for i := range ratings {
		r := &ratings[i]
		if !r.Involves(a.UserID, b.UserID) {
			continue
		}
		total += normalizeRating(r)
		n++
	}
	if n == 0 {
		return Neutral
	}
	return clamp01(total / float64(n))
}

// normalizeRating maps the six axes and the meet-again flag onto [0,1].
func normalizeRating(r *domain.DateRating) float64 {
	sum := 0.0
	for _, v := range r.Axes() {
		sum += (float64(v) - 1) / 4
	}
	if r.WouldMeetAgain {
		sum++
	}
	return clamp01(sum / 7)
}

// TasteFit compares evaluator's learned taste against candidate's actual
// attributes. Smaller root-mean-square distance scores higher.
func TasteFit(evaluator, candidate Participant, asOf time.Time) float64 {
	taste := evaluator.Taste
	if !taste.Usable() || candidate.Profile == nil {
		return Neutral
	}

	var sqSum float64
	n := 0
	addDim := func(want *float64, have float64, span float64) {
		if want == nil {
			return
		}
		d := math.Abs(*want-have) / span
		if d > 1 {
			d = 1
		}
		sqSum += d * d
		n++
	}

	cp := candidate.Profile
	if cp.EducationLevel != nil {
		addDim(taste.EducationLevel, float64(*cp.EducationLevel), 4)
	}
	if cp.ReligionImportance != nil {
		addDim(taste.ReligionImportance, float64(*cp.ReligionImportance), 4)
	}
	if cp.CareerAmbition != nil {
		addDim(taste.CareerAmbition, float64(*cp.CareerAmbition), 4)
	}
	if ca := candidate.Assessment; ca != nil {
		if v, ok := ca.Answer(domain.ItemSocialEnergy); ok {
			addDim(taste.SocialEnergy, float64(v), 4)
		}
		if v, ok := ca.Answer(domain.ItemLifestylePace); ok {
			addDim(taste.LifestylePace, float64(v), 4)
		}
		if v, ok := ca.Answer(domain.ItemConversationDepth); ok {
			addDim(taste.ConversationDepth, float64(v), 4)
		}
		if v, ok := ca.Answer(domain.ItemAffectionStyle); ok {
			addDim(taste.AffectionStyle, float64(v), 4)
		}
	}
	if evaluatorAge, ok := evaluator.Profile.AgeAt(asOf); ok {
		if candidateAge, ok := cp.AgeAt(asOf); ok {
			addDim(taste.AgeDifference, float64(candidateAge-evaluatorAge), ageDifferenceSpan)
		}
	}

	if n == 0 {
		return Neutral
	}
	return clamp01(1 - math.Sqrt(sqSum/float64(n)))
}

// completenessFields counts the profile fields that feed the scorers.
const completenessFields = 8

// Completeness is the share of scoring inputs present for one member: the
// declared profile fields, an assessment and a usable taste vector.
func Completeness(p Participant) float64 {
	if p.Profile == nil {
		return 0
	}
	pr := p.Profile
	filled := 0
	for _, present := range []bool{
		pr.Faith != nil,
		pr.ReligionImportance != nil,
		pr.PracticeFrequency != nil,
		pr.WantsChildren != nil,
		pr.CareerAmbition != nil,
		pr.WorkLifePhilosophy != nil,
		pr.EducationLevel != nil,
		pr.DateOfBirth != nil,
	} {
		if present {
			filled++
		}
	}

	parts := float64(filled) / completenessFields
	if p.Assessment != nil {
		parts++
	}
	if p.Taste.Usable() {
		parts++
	}
	return clamp01(parts / 3)
}

func scaleCloseness(x, y *int) (float64, bool) {
	if x == nil || y == nil {
		return 0, false
	}
	return ordinalCloseness(*x, *y, 4), true
}

func ordinalCloseness(x, y, span int) float64 {
	d := x - y
	if d < 0 {
		d = -d
	}
	return clamp01(1 - float64(d)/float64(span))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return Neutral
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
