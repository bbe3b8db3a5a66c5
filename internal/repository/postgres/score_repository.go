package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/repository"
)

const scoreColumnCount = 6

type scoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) repository.ScoreRepository {
	return &scoreRepository{db: db}
}

// UpsertBatch writes all rows in a single statement, so a batch lands or
// fails as a whole.
func (r *scoreRepository) UpsertBatch(ctx context.Context, scores []*domain.CompatibilityScore) error {
	if len(scores) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(scores)*scoreColumnCount)
	for _, s := range scores {
		args = append(args, s.UserA, s.UserB, s.ScoreAToB, s.ScoreBToA, s.FinalScore, s.Breakdown)
	}
	query := `
		INSERT INTO compatibility_scores (user_a, user_b, score_a_to_b, score_b_to_a, final_score, breakdown)
		VALUES ` + valuesClause(len(scores), scoreColumnCount) + `
		ON CONFLICT (user_a, user_b) DO UPDATE SET
			score_a_to_b = EXCLUDED.score_a_to_b,
			score_b_to_a = EXCLUDED.score_b_to_a,
			final_score = EXCLUDED.final_score,
			breakdown = EXCLUDED.breakdown
	`
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *scoreRepository) Get(ctx context.Context, key domain.PairKey) (*domain.CompatibilityScore, error) {
	var score domain.CompatibilityScore
	query := `SELECT * FROM compatibility_scores WHERE user_a = $1 AND user_b = $2`
	err := r.db.GetContext(ctx, &score, query, key.A, key.B)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScoreNotFound
		}
		return nil, err
	}
	return &score, nil
}

func (r *scoreRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CompatibilityScore, error) {
	var scores []*domain.CompatibilityScore
	query := `
		SELECT * FROM compatibility_scores
		WHERE user_a = $1 OR user_b = $1
		ORDER BY final_score DESC, user_a, user_b
		LIMIT $2
	`
	err := r.db.SelectContext(ctx, &scores, query, userID, limit)
	return scores, err
}

func (r *scoreRepository) DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `DELETE FROM compatibility_scores WHERE user_a = $1 OR user_b = $1`
	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *scoreRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM compatibility_scores`)
	return err
}

type weightRepository struct {
	db *sqlx.DB
}

func NewWeightRepository(db *sqlx.DB) repository.WeightRepository {
	return &weightRepository{db: db}
}

func (r *weightRepository) Get(ctx context.Context) (domain.MatchWeights, bool, error) {
	var w domain.MatchWeights
	query := `
		SELECT life_alignment, psychological, chemistry, taste_learning, profile_completeness
		FROM match_weight_config
		WHERE id = 1
	`
	err := r.db.GetContext(ctx, &w, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MatchWeights{}, false, nil
		}
		return domain.MatchWeights{}, false, err
	}
	return w, true, nil
}

func (r *weightRepository) Save(ctx context.Context, w domain.MatchWeights) error {
	query := `
		INSERT INTO match_weight_config (id, life_alignment, psychological, chemistry, taste_learning, profile_completeness, updated_at)
		VALUES (1, :life_alignment, :psychological, :chemistry, :taste_learning, :profile_completeness, NOW())
		ON CONFLICT (id) DO UPDATE SET
			life_alignment = EXCLUDED.life_alignment,
			psychological = EXCLUDED.psychological,
			chemistry = EXCLUDED.chemistry,
			taste_learning = EXCLUDED.taste_learning,
			profile_completeness = EXCLUDED.profile_completeness,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.NamedExecContext(ctx, query, w)
	return err
}
