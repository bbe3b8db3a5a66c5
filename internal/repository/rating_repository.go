package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

type RatingRepository interface {
	// Create inserts a rating; a second rating for the same directed pair at
	// the same event yields domain.ErrRatingAlreadyExists.
	Create(ctx context.Context, rating *domain.DateRating) error
	// ListBetween returns ratings exchanged in either direction between
	// userID and any of others.
	ListBetween(ctx context.Context, userID uuid.UUID, others []uuid.UUID) ([]domain.DateRating, error)
	ListAll(ctx context.Context) ([]domain.DateRating, error)
}

type TasteVectorRepository interface {
	GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.TasteVector, error)
	Upsert(ctx context.Context, vector *domain.TasteVector) error
}
