package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

// ScoreRepository is the pair-keyed compatibility cache. Rows are only ever
// upserted whole or deleted.
type ScoreRepository interface {
	UpsertBatch(ctx context.Context, scores []*domain.CompatibilityScore) error
	Get(ctx context.Context, key domain.PairKey) (*domain.CompatibilityScore, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CompatibilityScore, error)
	DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context) error
}

type WeightRepository interface {
	// Get returns the stored config; found is false when none was saved.
	Get(ctx context.Context) (weights domain.MatchWeights, found bool, err error)
	Save(ctx context.Context, weights domain.MatchWeights) error
}
