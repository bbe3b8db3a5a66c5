package taste

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/speeddate-backend/internal/repository/memory"
)

var today = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func person(store *memory.Store, g domain.Gender, born, education int) uuid.UUID {
	id := uuid.New()
	dob := time.Date(born, 1, 1, 0, 0, 0, 0, time.UTC)
	store.PutProfile(&domain.Profile{
		UserID:         id,
		Gender:         g,
		EducationLevel: intPtr(education),
		DateOfBirth:    &dob,
		IsActive:       true,
	})
	return id
}

func rate(t *testing.T, store *memory.Store, from, to uuid.UUID, positive bool) {
	t.Helper()
	v := 2
	if positive {
		v = 5
	}
	err := store.RatingRepository().Create(context.Background(), &domain.DateRating{
		EventID:             uuid.New(),
		FromUserID:          from,
		ToUserID:            to,
		ConversationQuality: v,
		LongTermPotential:   2,
		PhysicalChemistry:   2,
		ComfortLevel:        3,
		ValuesAlignment:     3,
		EnergyCompatibility: 3,
	})
	if err != nil {
		t.Fatalf("seed rating: %v", err)
	}
}

func newLearner(store *memory.Store) *LearnerUseCase {
	uc := NewLearnerUseCase(
		store.RatingRepository(),
		store.ProfileRepository(),
		store.AssessmentRepository(),
		store.TasteVectorRepository(),
		store.ScoreRepository(),
		logger.NewNop(),
	)
	uc.now = func() time.Time { return today }
	return uc
}

func TestRun_SkipsRatersBelowThreshold(t *testing.T) {
	store := memory.New()
	rater := person(store, domain.GenderMale, 1990, 3)
	for i := 0; i < 2; i++ {
		rate(t, store, rater, person(store, domain.GenderFemale, 1992, 4), true)
	}
	// negatives never count toward the threshold
	for i := 0; i < 5; i++ {
		rate(t, store, rater, person(store, domain.GenderFemale, 1992, 4), false)
	}

	stats, err := newLearner(store).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Written != 0 || stats.Skipped != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if _, ok := store.Taste(rater); ok {
		t.Fatalf("taste vector written for a rater with only 2 positives")
	}
}

func TestRun_AveragesPositivePartnersWithSignedAge(t *testing.T) {
	store := memory.New()
	rater := person(store, domain.GenderMale, 1990, 3)

	younger := []uuid.UUID{
		person(store, domain.GenderFemale, 1992, 2),
		person(store, domain.GenderFemale, 1993, 4),
		person(store, domain.GenderFemale, 1994, 5),
	}
	for _, p := range younger {
		rate(t, store, rater, p, true)
	}
	// a disliked partner does not move the average
	rate(t, store, rater, person(store, domain.GenderFemale, 1970, 1), false)

	answers := make([]int, domain.AssessmentItemCount)
	for i := range answers {
		answers[i] = 3
	}
	answers[domain.ItemSocialEnergy] = 5
	store.PutAssessment(&domain.CompatibilityAssessment{UserID: younger[0], Answers: answers})

	stats, err := newLearner(store).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Written != 1 {
		t.Fatalf("expected one vector, got %+v", stats)
	}

	v, ok := store.Taste(rater)
	if !ok {
		t.Fatalf("taste vector missing")
	}
	if v.SampleCount != 3 {
		t.Fatalf("sample count %d, want 3", v.SampleCount)
	}
	if v.EducationLevel == nil || math.Abs(*v.EducationLevel-11.0/3) > 1e-9 {
		t.Fatalf("education average %v", v.EducationLevel)
	}
	// partners are 2, 3 and 4 years younger
	if v.AgeDifference == nil || math.Abs(*v.AgeDifference-(-3)) > 1e-9 {
		t.Fatalf("signed age difference %v, want -3", v.AgeDifference)
	}
	// only one partner has an assessment; the others do not pull it to zero
	if v.SocialEnergy == nil || *v.SocialEnergy != 5 {
		t.Fatalf("social energy %v, want 5", v.SocialEnergy)
	}
	if v.ReligionImportance != nil {
		t.Fatalf("no partner declared religion importance, got %v", *v.ReligionImportance)
	}
}

func TestRun_InvalidatesRaterScores(t *testing.T) {
	store := memory.New()
	rater := person(store, domain.GenderMale, 1990, 3)
	for i := 0; i < 3; i++ {
		rate(t, store, rater, person(store, domain.GenderFemale, 1992, 4), true)
	}
	bystander1, bystander2 := uuid.New(), uuid.New()

	touching, _ := domain.CanonicalPair(rater, uuid.New())
	untouched, _ := domain.CanonicalPair(bystander1, bystander2)
	store.PutScore(&domain.CompatibilityScore{UserA: touching.A, UserB: touching.B})
	store.PutScore(&domain.CompatibilityScore{UserA: untouched.A, UserB: untouched.B})

	stats, err := newLearner(store).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Invalidated != 1 {
		t.Fatalf("expected 1 invalidated row, got %d", stats.Invalidated)
	}
	if _, err := store.ScoreRepository().Get(context.Background(), touching); !errors.Is(err, domain.ErrScoreNotFound) {
		t.Fatalf("rater's cached row survived")
	}
	if _, err := store.ScoreRepository().Get(context.Background(), untouched); err != nil {
		t.Fatalf("unrelated row was removed: %v", err)
	}
}
