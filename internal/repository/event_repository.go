package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

type EventRepository interface {
	GetByID(ctx context.Context, eventID uuid.UUID) (*domain.Event, error)
	// GetRegistration returns domain.ErrNotOnRoster when userID never
	// registered for the event.
	GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*domain.EventRegistration, error)
	// ListRoster returns profiles of confirmed or attended registrations.
	ListRoster(ctx context.Context, eventID uuid.UUID) ([]*domain.Profile, error)
}

type PrivacyRepository interface {
	GetDefaults(ctx context.Context, userID uuid.UUID) (domain.ShareFlags, bool, error)
}

type SubscriptionRepository interface {
	IsActiveVIP(ctx context.Context, userID uuid.UUID) (bool, error)
}
