package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/repository"
)

const profileColumns = `
	user_id, display_name, faith, religion_importance, practice_frequency,
	wants_children, career_ambition, work_life_philosophy, education_level,
	gender, sexual_preference, country, date_of_birth, is_active, created_at
`

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	out := make(map[uuid.UUID]*domain.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var profiles []*domain.Profile
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ANY($1::uuid[])`
	if err := r.db.SelectContext(ctx, &profiles, query, uuidArray(userIDs)); err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}

func (r *profileRepository) ListCandidates(ctx context.Context, subject *domain.Profile, genders []domain.Gender, limit int) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	if subject.Country == nil || len(genders) == 0 {
		return profiles, nil
	}
	g := make(pq.StringArray, len(genders))
	for i, v := range genders {
		g[i] = string(v)
	}
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE is_active = TRUE
		  AND country = $1
		  AND user_id <> $2
		  AND gender = ANY($3)
		ORDER BY created_at, user_id
		LIMIT $4
	`
	err := r.db.SelectContext(ctx, &profiles, query, *subject.Country, subject.UserID, g, limit)
	return profiles, err
}

// ListSeekers mirrors domain.Profile.SeekedGenders in SQL: an unset
// preference seeks the opposite gender.
func (r *profileRepository) ListSeekers(ctx context.Context, subject *domain.Profile, limit int) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	if subject.Country == nil || subject.Gender == "" {
		return profiles, nil
	}
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE is_active = TRUE
		  AND country = $1
		  AND user_id <> $2
		  AND (
		        sexual_preference = 'both'
		     OR (sexual_preference = 'men' AND $3 = 'male')
		     OR (sexual_preference = 'women' AND $3 = 'female')
		     OR (COALESCE(sexual_preference, '') = '' AND $4 <> '' AND gender = $4)
		  )
		ORDER BY created_at, user_id
		LIMIT $5
	`
	err := r.db.SelectContext(ctx, &profiles, query,
		*subject.Country, subject.UserID, string(subject.Gender), string(subject.Gender.Opposite()), limit)
	return profiles, err
}

func (r *profileRepository) ListActiveUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT user_id FROM profiles WHERE is_active = TRUE ORDER BY user_id`
	err := r.db.SelectContext(ctx, &ids, query)
	return ids, err
}

type assessmentRow struct {
	UserID      uuid.UUID     `db:"user_id"`
	Answers     pq.Int64Array `db:"answers"`
	CompletedAt time.Time     `db:"completed_at"`
}

type assessmentRepository struct {
	db *sqlx.DB
}

func NewAssessmentRepository(db *sqlx.DB) repository.AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.CompatibilityAssessment, error) {
	out := make(map[uuid.UUID]*domain.CompatibilityAssessment, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []assessmentRow
	query := `
		SELECT user_id, answers, completed_at
		FROM compatibility_assessments
		WHERE user_id = ANY($1::uuid[])
	`
	if err := r.db.SelectContext(ctx, &rows, query, uuidArray(userIDs)); err != nil {
		return nil, err
	}
	for _, row := range rows {
		answers := make([]int, len(row.Answers))
		for i, v := range row.Answers {
			answers[i] = int(v)
		}
		out[row.UserID] = &domain.CompatibilityAssessment{
			UserID:      row.UserID,
			Answers:     answers,
			CompletedAt: row.CompletedAt,
		}
	}
	return out, nil
}

type dealbreakerRow struct {
	UserID              uuid.UUID      `db:"user_id"`
	PreferredAgeMin     *int           `db:"preferred_age_min"`
	PreferredAgeMax     *int           `db:"preferred_age_max"`
	ReligionMustMatch   bool           `db:"religion_must_match"`
	AcceptableReligions pq.StringArray `db:"acceptable_religions"`
	MustWantChildren    bool           `db:"must_want_children"`
	MinEducationLevel   *int           `db:"min_education_level"`
}

type dealbreakerRepository struct {
	db *sqlx.DB
}

func NewDealbreakerRepository(db *sqlx.DB) repository.DealbreakerRepository {
	return &dealbreakerRepository{db: db}
}

func (r *dealbreakerRepository) GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.DealbreakerPreferences, error) {
	out := make(map[uuid.UUID]*domain.DealbreakerPreferences, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []dealbreakerRow
	query := `
		SELECT user_id, preferred_age_min, preferred_age_max, religion_must_match,
		       acceptable_religions, must_want_children, min_education_level
		FROM dealbreaker_preferences
		WHERE user_id = ANY($1::uuid[])
	`
	if err := r.db.SelectContext(ctx, &rows, query, uuidArray(userIDs)); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = &domain.DealbreakerPreferences{
			UserID:              row.UserID,
			PreferredAgeMin:     row.PreferredAgeMin,
			PreferredAgeMax:     row.PreferredAgeMax,
			ReligionMustMatch:   row.ReligionMustMatch,
			AcceptableReligions: []string(row.AcceptableReligions),
			MustWantChildren:    row.MustWantChildren,
			MinEducationLevel:   row.MinEducationLevel,
		}
	}
	return out, nil
}
