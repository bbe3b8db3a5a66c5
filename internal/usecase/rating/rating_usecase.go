package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/speeddate-backend/internal/repository"
)

type RatingUseCase struct {
	eventRepo  repository.EventRepository
	ratingRepo repository.RatingRepository
	scoreRepo  repository.ScoreRepository
	log        *logger.Logger
}

func NewRatingUseCase(
	eventRepo repository.EventRepository,
	ratingRepo repository.RatingRepository,
	scoreRepo repository.ScoreRepository,
	log *logger.Logger,
) *RatingUseCase {
	return &RatingUseCase{
		eventRepo:  eventRepo,
		ratingRepo: ratingRepo,
		scoreRepo:  scoreRepo,
		log:        log.With("component", "RatingUseCase"),
	}
}

// SubmitRatingRequest is one attendee's verdict on a date.
type SubmitRatingRequest struct {
	ToUserID            uuid.UUID `json:"to_user_id" binding:"required"`
	WouldMeetAgain      bool      `json:"would_meet_again"`
	ConversationQuality int       `json:"conversation_quality" binding:"required,min=1,max=5"`
	LongTermPotential   int       `json:"long_term_potential" binding:"required,min=1,max=5"`
	PhysicalChemistry   int       `json:"physical_chemistry" binding:"required,min=1,max=5"`
	ComfortLevel        int       `json:"comfort_level" binding:"required,min=1,max=5"`
	ValuesAlignment     int       `json:"values_alignment" binding:"required,min=1,max=5"`
	EnergyCompatibility int       `json:"energy_compatibility" binding:"required,min=1,max=5"`
}

// SubmitRating stores a rating from fromUserID and drops every cached score
// touching either member so their pairs are recomputed.
func (uc *RatingUseCase) SubmitRating(ctx context.Context, eventID, fromUserID uuid.UUID, req SubmitRatingRequest) (*domain.DateRating, error) {
	if req.ToUserID == fromUserID {
		return nil, domain.ErrCannotRateSelf
	}

	if _, err := uc.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	for _, userID := range []uuid.UUID{fromUserID, req.ToUserID} {
		if err := uc.requireAttendee(ctx, eventID, userID); err != nil {
			return nil, err
		}
	}

	rating := &domain.DateRating{
		EventID:             eventID,
		FromUserID:          fromUserID,
		ToUserID:            req.ToUserID,
		WouldMeetAgain:      req.WouldMeetAgain,
		ConversationQuality: req.ConversationQuality,
		LongTermPotential:   req.LongTermPotential,
		PhysicalChemistry:   req.PhysicalChemistry,
		ComfortLevel:        req.ComfortLevel,
		ValuesAlignment:     req.ValuesAlignment,
		EnergyCompatibility: req.EnergyCompatibility,
	}
	if err := domain.Validate(rating); err != nil {
		return nil, err
	}

	if err := uc.ratingRepo.Create(ctx, rating); err != nil {
		if errors.Is(err, domain.ErrRatingAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	// The rating is committed at this point. A failed invalidation leaves
	// stale rows until the nightly rebuild, so it is logged, not returned.
	for _, userID := range []uuid.UUID{fromUserID, req.ToUserID} {
		n, err := uc.scoreRepo.DeleteForUser(ctx, userID)
		if err != nil {
			uc.log.Error("Failed to invalidate scores after rating", "user_id", userID, "error", err)
			continue
		}
		uc.log.Debug("Invalidated scores after rating", "user_id", userID, "rows", n)
	}

	return rating, nil
}

func (uc *RatingUseCase) requireAttendee(ctx context.Context, eventID, userID uuid.UUID) error {
	reg, err := uc.eventRepo.GetRegistration(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if !reg.Status.Participates() {
		return domain.ErrNotOnRoster
	}
	return nil
}
