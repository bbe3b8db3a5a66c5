package weights

import (
	"context"
	"fmt"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/speeddate-backend/internal/repository"
)

type WeightsUseCase struct {
	weightRepo repository.WeightRepository
	scoreRepo  repository.ScoreRepository
	defaults   domain.MatchWeights
	log        *logger.Logger
}

func NewWeightsUseCase(
	weightRepo repository.WeightRepository,
	scoreRepo repository.ScoreRepository,
	defaults domain.MatchWeights,
	log *logger.Logger,
) *WeightsUseCase {
	return &WeightsUseCase{
		weightRepo: weightRepo,
		scoreRepo:  scoreRepo,
		defaults:   defaults,
		log:        log.With("component", "WeightsUseCase"),
	}
}

// Current returns the stored weights, or the configured defaults when no
// operator has saved any. A stored config that fails validation is an error
// rather than silently replaced.
func (uc *WeightsUseCase) Current(ctx context.Context) (domain.MatchWeights, error) {
	w, found, err := uc.weightRepo.Get(ctx)
	if err != nil {
		return domain.MatchWeights{}, fmt.Errorf("failed to load match weights: %w", err)
	}
	if !found {
		return uc.defaults, nil
	}
	if err := w.Validate(); err != nil {
		return domain.MatchWeights{}, err
	}
	return w, nil
}

// Update validates and stores w, then clears the whole score cache since
// every cached row was blended with the old weights.
func (uc *WeightsUseCase) Update(ctx context.Context, w domain.MatchWeights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if err := uc.weightRepo.Save(ctx, w); err != nil {
		return fmt.Errorf("failed to save match weights: %w", err)
	}
	if err := uc.scoreRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear score cache: %w", err)
	}
	uc.log.Info("Match weights updated, score cache cleared",
		"life_alignment", w.LifeAlignment,
		"psychological", w.Psychological,
		"chemistry", w.Chemistry,
		"taste_learning", w.TasteLearning,
		"profile_completeness", w.ProfileCompleteness,
	)
	return nil
}
