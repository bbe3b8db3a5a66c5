package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.Profile, error)
	// ListCandidates returns active profiles in subject's country whose
	// gender is in genders, excluding subject, in the store's default order.
	ListCandidates(ctx context.Context, subject *domain.Profile, genders []domain.Gender, limit int) ([]*domain.Profile, error)
	// ListSeekers returns active profiles in subject's country whose sexual
	// preference admits subject's gender, excluding subject, in the same
	// order as ListCandidates.
	ListSeekers(ctx context.Context, subject *domain.Profile, limit int) ([]*domain.Profile, error)
	ListActiveUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

type AssessmentRepository interface {
	GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.CompatibilityAssessment, error)
}

type DealbreakerRepository interface {
	GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.DealbreakerPreferences, error)
}
