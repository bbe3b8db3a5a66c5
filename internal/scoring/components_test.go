package scoring

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLifeAlignment_IdenticalProfilesScoreOne(t *testing.T) {
	a := fullProfile(uuid.New(), domain.GenderMale)
	b := fullProfile(uuid.New(), domain.GenderFemale)
	if got := LifeAlignment(a, b); !almostEqual(got, 1) {
		t.Fatalf("expected 1, got %v", got)
	}
}

func TestLifeAlignment_NoSharedFieldsIsNeutral(t *testing.T) {
	a := &domain.Profile{UserID: uuid.New()}
	b := fullProfile(uuid.New(), domain.GenderFemale)
	if got := LifeAlignment(a, b); got != Neutral {
		t.Fatalf("expected neutral, got %v", got)
	}
}

func TestLifeAlignment_ReligionImportanceMakesItDirectional(t *testing.T) {
	a := fullProfile(uuid.New(), domain.GenderMale)
	b := fullProfile(uuid.New(), domain.GenderFemale)
	a.Faith = strPtr("jewish")
	a.ReligionImportance = intPtr(5)
	b.ReligionImportance = intPtr(1)

	fromA := LifeAlignment(a, b)
	fromB := LifeAlignment(b, a)
	if !(fromA < fromB) {
		t.Fatalf("faith mismatch should weigh more for the devout side: fromA=%v fromB=%v", fromA, fromB)
	}
}

func TestPsychological(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()

	if got := Psychological(nil, assessment(id2, 3)); got != Neutral {
		t.Fatalf("missing assessment must be neutral, got %v", got)
	}

	// Identical answers: similarity items agree fully, complement items not at all.
	same := Psychological(assessment(id1, 3), assessment(id2, 3))
	complements := 0
	for _, item := range domain.AssessmentItems {
		if item.Polarity == domain.PolarityComplement {
			complements++
		}
	}
	want := float64(domain.AssessmentItemCount-complements) / domain.AssessmentItemCount
	if !almostEqual(same, want) {
		t.Fatalf("expected %v, got %v", want, same)
	}

	// Opposite ends: complement items agree fully, similarity items not at all.
	far := Psychological(assessment(id1, 1), assessment(id2, 5))
	if !almostEqual(far, float64(complements)/domain.AssessmentItemCount) {
		t.Fatalf("unexpected score for opposite answers: %v", far)
	}
}

func TestChemistry(t *testing.T) {
	a := fullProfile(uuid.New(), domain.GenderMale)
	b := fullProfile(uuid.New(), domain.GenderFemale)

	if got := Chemistry(a, b, nil); got != Neutral {
		t.Fatalf("expected neutral without ratings, got %v", got)
	}

	ratings := []domain.DateRating{
		rating(a.UserID, b.UserID, 5, true),
		rating(b.UserID, a.UserID, 1, false),
		rating(a.UserID, uuid.New(), 5, true),
	}
	if got := Chemistry(a, b, ratings); !almostEqual(got, 0.5) {
		t.Fatalf("expected average of 1 and 0, got %v", got)
	}
}

func TestTasteFit(t *testing.T) {
	evaluator := Participant{Profile: fullProfile(uuid.New(), domain.GenderMale)}
	candidate := Participant{Profile: fullProfile(uuid.New(), domain.GenderFemale)}

	evaluator.Taste = &domain.TasteVector{EducationLevel: f64Ptr(4), SampleCount: 2}
	if got := TasteFit(evaluator, candidate, asOf); got != Neutral {
		t.Fatalf("insufficient samples must be neutral, got %v", got)
	}

	evaluator.Taste = &domain.TasteVector{
		EducationLevel: f64Ptr(4),
		CareerAmbition: f64Ptr(4),
		AgeDifference:  f64Ptr(0),
		SampleCount:    3,
	}
	if got := TasteFit(evaluator, candidate, asOf); !almostEqual(got, 1) {
		t.Fatalf("exact taste match should be 1, got %v", got)
	}

	evaluator.Taste.EducationLevel = f64Ptr(0)
	evaluator.Taste.CareerAmbition = f64Ptr(0)
	evaluator.Taste.AgeDifference = f64Ptr(40)
	if got := TasteFit(evaluator, candidate, asOf); !almostEqual(got, 0) {
		t.Fatalf("maximal distance should be 0, got %v", got)
	}
}

func TestCompleteness(t *testing.T) {
	id := uuid.New()
	full := Participant{
		Profile:    fullProfile(id, domain.GenderMale),
		Assessment: assessment(id, 3),
		Taste:      &domain.TasteVector{SampleCount: 4},
	}
	if got := Completeness(full); !almostEqual(got, 1) {
		t.Fatalf("expected 1, got %v", got)
	}

	bare := Participant{Profile: &domain.Profile{UserID: id}}
	if got := Completeness(bare); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
