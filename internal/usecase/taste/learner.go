package taste

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/speeddate-backend/internal/repository"
)

// Stats summarises one learner run.
type Stats struct {
	Raters      int   `json:"raters"`
	Written     int   `json:"written"`
	Skipped     int   `json:"skipped"`
	Invalidated int64 `json:"invalidated"`
}

// LearnerUseCase derives each rater's taste vector from the partners they
// rated positively.
type LearnerUseCase struct {
	ratingRepo     repository.RatingRepository
	profileRepo    repository.ProfileRepository
	assessmentRepo repository.AssessmentRepository
	tasteRepo      repository.TasteVectorRepository
	scoreRepo      repository.ScoreRepository
	now            func() time.Time
	log            *logger.Logger
}

func NewLearnerUseCase(
	ratingRepo repository.RatingRepository,
	profileRepo repository.ProfileRepository,
	assessmentRepo repository.AssessmentRepository,
	tasteRepo repository.TasteVectorRepository,
	scoreRepo repository.ScoreRepository,
	log *logger.Logger,
) *LearnerUseCase {
	return &LearnerUseCase{
		ratingRepo:     ratingRepo,
		profileRepo:    profileRepo,
		assessmentRepo: assessmentRepo,
		tasteRepo:      tasteRepo,
		scoreRepo:      scoreRepo,
		now:            time.Now,
		log:            log.With("component", "TasteLearner"),
	}
}

// mean averages one attribute; each field keeps its own counter so absent
// values never drag the average toward zero.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m *mean) addInt(v *int) {
	if v != nil {
		m.add(float64(*v))
	}
}

func (m *mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

// Run rebuilds the taste vector of every rater with at least
// domain.MinTasteSamples positive ratings and drops their cached scores.
// Raters below the threshold are left untouched. A failure for one rater
// does not stop the others.
func (uc *LearnerUseCase) Run(ctx context.Context) (Stats, error) {
	ratings, err := uc.ratingRepo.ListAll(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list ratings: %w", err)
	}

	positives := make(map[uuid.UUID][]domain.DateRating)
	raters := make(map[uuid.UUID]struct{})
	for _, r := range ratings {
		raters[r.FromUserID] = struct{}{}
		if r.IsPositive() {
			positives[r.FromUserID] = append(positives[r.FromUserID], r)
		}
	}

	stats := Stats{Raters: len(raters)}
	var qualifying []uuid.UUID
	people := make(map[uuid.UUID]struct{})
	for rater, rs := range positives {
		if len(rs) < domain.MinTasteSamples {
			continue
		}
		qualifying = append(qualifying, rater)
		people[rater] = struct{}{}
		for _, r := range rs {
			people[r.ToUserID] = struct{}{}
		}
	}
	stats.Skipped = stats.Raters - len(qualifying)
	if len(qualifying) == 0 {
		uc.log.Info("Taste learning finished", "raters", stats.Raters, "written", 0)
		return stats, nil
	}
	sort.Slice(qualifying, func(i, j int) bool { return domain.Less(qualifying[i], qualifying[j]) })

	ids := make([]uuid.UUID, 0, len(people))
	for id := range people {
		ids = append(ids, id)
	}
	profiles, err := uc.profileRepo.GetByUserIDs(ctx, ids)
	if err != nil {
		return stats, fmt.Errorf("failed to load profiles: %w", err)
	}
	assessments, err := uc.assessmentRepo.GetByUserIDs(ctx, ids)
	if err != nil {
		return stats, fmt.Errorf("failed to load assessments: %w", err)
	}

	y, m, d := uc.now().UTC().Date()
	asOf := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var errs []error
	for _, rater := range qualifying {
		vector := buildVector(rater, positives[rater], profiles, assessments, asOf)
		vector.UpdatedAt = uc.now().UTC()

		if err := uc.tasteRepo.Upsert(ctx, vector); err != nil {
			errs = append(errs, fmt.Errorf("rater %s: %w", rater, err))
			continue
		}
		stats.Written++

		n, err := uc.scoreRepo.DeleteForUser(ctx, rater)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalidate %s: %w", rater, err))
			continue
		}
		stats.Invalidated += n
	}

	uc.log.Info("Taste learning finished",
		"raters", stats.Raters,
		"written", stats.Written,
		"skipped", stats.Skipped,
		"invalidated", stats.Invalidated,
		"failures", len(errs),
	)
	return stats, errors.Join(errs...)
}

func buildVector(
	rater uuid.UUID,
	positives []domain.DateRating,
	profiles map[uuid.UUID]*domain.Profile,
	assessments map[uuid.UUID]*domain.CompatibilityAssessment,
	asOf time.Time,
) *domain.TasteVector {
	var education, religion, career, social, pace, depth, affection, ageDiff mean

	raterAge, raterAgeKnown := profiles[rater].AgeAt(asOf)
	for _, r := range positives {
		partner := profiles[r.ToUserID]
		if partner != nil {
			education.addInt(partner.EducationLevel)
			religion.addInt(partner.ReligionImportance)
			career.addInt(partner.CareerAmbition)
			if partnerAge, ok := partner.AgeAt(asOf); ok && raterAgeKnown {
				ageDiff.add(float64(partnerAge - raterAge))
			}
		}
		if a := assessments[r.ToUserID]; a != nil {
			if v, ok := a.Answer(domain.ItemSocialEnergy); ok {
				social.add(float64(v))
			}
			if v, ok := a.Answer(domain.ItemLifestylePace); ok {
				pace.add(float64(v))
			}
			if v, ok := a.Answer(domain.ItemConversationDepth); ok {
				depth.add(float64(v))
			}
			if v, ok := a.Answer(domain.ItemAffectionStyle); ok {
				affection.add(float64(v))
			}
		}
	}

	return &domain.TasteVector{
		UserID:             rater,
		EducationLevel:     education.value(),
		ReligionImportance: religion.value(),
		CareerAmbition:     career.value(),
		SocialEnergy:       social.value(),
		LifestylePace:      pace.value(),
		ConversationDepth:  depth.value(),
		AffectionStyle:     affection.value(),
		AgeDifference:      ageDiff.value(),
		SampleCount:        len(positives),
	}
}
