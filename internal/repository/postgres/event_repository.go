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

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	query := `
		SELECT id, title, starts_at, matching_open, matching_locked, matching_deadline
		FROM events
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &event, query, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*domain.EventRegistration, error) {
	var reg domain.EventRegistration
	query := `SELECT event_id, user_id, status FROM event_registrations WHERE event_id = $1 AND user_id = $2`
	err := r.db.GetContext(ctx, &reg, query, eventID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotOnRoster
		}
		return nil, err
	}
	return &reg, nil
}

func (r *eventRepository) ListRoster(ctx context.Context, eventID uuid.UUID) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	query := `
		SELECT ` + prefixedProfileColumns + `
		FROM event_registrations er
		JOIN profiles p ON p.user_id = er.user_id
		WHERE er.event_id = $1
		  AND er.status IN ('confirmed', 'attended')
		ORDER BY p.user_id
	`
	err := r.db.SelectContext(ctx, &profiles, query, eventID)
	return profiles, err
}

const prefixedProfileColumns = `
	p.user_id, p.display_name, p.faith, p.religion_importance, p.practice_frequency,
	p.wants_children, p.career_ambition, p.work_life_philosophy, p.education_level,
	p.gender, p.sexual_preference, p.country, p.date_of_birth, p.is_active, p.created_at
`

type privacyRepository struct {
	db *sqlx.DB
}

func NewPrivacyRepository(db *sqlx.DB) repository.PrivacyRepository {
	return &privacyRepository{db: db}
}

func (r *privacyRepository) GetDefaults(ctx context.Context, userID uuid.UUID) (domain.ShareFlags, bool, error) {
	var flags domain.ShareFlags
	query := `
		SELECT share_email, share_phone, share_whatsapp, share_instagram, share_facebook
		FROM privacy_defaults
		WHERE user_id = $1
	`
	err := r.db.GetContext(ctx, &flags, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ShareFlags{}, false, nil
		}
		return domain.ShareFlags{}, false, err
	}
	return flags, true, nil
}

type subscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) repository.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) IsActiveVIP(ctx context.Context, userID uuid.UUID) (bool, error) {
	var active bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM vip_subscriptions
			WHERE user_id = $1
			  AND is_active = TRUE
			  AND (expires_at IS NULL OR expires_at > NOW())
		)
	`
	err := r.db.GetContext(ctx, &active, query, userID)
	return active, err
}
