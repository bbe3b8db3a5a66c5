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

const ratingColumns = `
	id, event_id, from_user_id, to_user_id, would_meet_again,
	conversation_quality, long_term_potential, physical_chemistry,
	comfort_level, values_alignment, energy_compatibility, created_at
`

type ratingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) repository.RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(ctx context.Context, rating *domain.DateRating) error {
	query := `
		INSERT INTO date_ratings (
			event_id, from_user_id, to_user_id, would_meet_again,
			conversation_quality, long_term_potential, physical_chemistry,
			comfort_level, values_alignment, energy_compatibility
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (event_id, from_user_id, to_user_id) DO NOTHING
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rating.EventID, rating.FromUserID, rating.ToUserID, rating.WouldMeetAgain,
		rating.ConversationQuality, rating.LongTermPotential, rating.PhysicalChemistry,
		rating.ComfortLevel, rating.ValuesAlignment, rating.EnergyCompatibility,
	).Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrRatingAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ratingRepository) ListBetween(ctx context.Context, userID uuid.UUID, others []uuid.UUID) ([]domain.DateRating, error) {
	var ratings []domain.DateRating
	if len(others) == 0 {
		return ratings, nil
	}
	query := `
		SELECT ` + ratingColumns + `
		FROM date_ratings
		WHERE (from_user_id = $1 AND to_user_id = ANY($2::uuid[]))
		   OR (to_user_id = $1 AND from_user_id = ANY($2::uuid[]))
		ORDER BY id
	`
	err := r.db.SelectContext(ctx, &ratings, query, userID, uuidArray(others))
	return ratings, err
}

func (r *ratingRepository) ListAll(ctx context.Context) ([]domain.DateRating, error) {
	var ratings []domain.DateRating
	query := `SELECT ` + ratingColumns + ` FROM date_ratings ORDER BY id`
	err := r.db.SelectContext(ctx, &ratings, query)
	return ratings, err
}

type tasteVectorRepository struct {
	db *sqlx.DB
}

func NewTasteVectorRepository(db *sqlx.DB) repository.TasteVectorRepository {
	return &tasteVectorRepository{db: db}
}

func (r *tasteVectorRepository) GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.TasteVector, error) {
	out := make(map[uuid.UUID]*domain.TasteVector, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var vectors []*domain.TasteVector
	query := `SELECT * FROM taste_vectors WHERE user_id = ANY($1::uuid[])`
	if err := r.db.SelectContext(ctx, &vectors, query, uuidArray(userIDs)); err != nil {
		return nil, err
	}
	for _, v := range vectors {
		out[v.UserID] = v
	}
	return out, nil
}

func (r *tasteVectorRepository) Upsert(ctx context.Context, vector *domain.TasteVector) error {
	query := `
		INSERT INTO taste_vectors (
			user_id, education_level, religion_importance, career_ambition,
			social_energy, lifestyle_pace, conversation_depth, affection_style,
			age_difference, sample_count, updated_at
		)
		VALUES (
			:user_id, :education_level, :religion_importance, :career_ambition,
			:social_energy, :lifestyle_pace, :conversation_depth, :affection_style,
			:age_difference, :sample_count, :updated_at
		)
		ON CONFLICT (user_id) DO UPDATE SET
			education_level = EXCLUDED.education_level,
			religion_importance = EXCLUDED.religion_importance,
			career_ambition = EXCLUDED.career_ambition,
			social_energy = EXCLUDED.social_energy,
			lifestyle_pace = EXCLUDED.lifestyle_pace,
			conversation_depth = EXCLUDED.conversation_depth,
			affection_style = EXCLUDED.affection_style,
			age_difference = EXCLUDED.age_difference,
			sample_count = EXCLUDED.sample_count,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.NamedExecContext(ctx, query, vector)
	return err
}
