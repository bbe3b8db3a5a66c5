package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

type MatchChoiceRepository interface {
	HasSubmitted(ctx context.Context, eventID, scorerID uuid.UUID) (bool, error)
	// SubmitAll writes every choice of one scorer atomically. A scorer that
	// already submitted for the event gets a domain.SubmissionError with
	// reason already_submitted and nothing is written.
	SubmitAll(ctx context.Context, eventID, scorerID uuid.UUID, choices []domain.MatchChoice) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.MatchChoice, error)
	ListSubmitters(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error)
	// ListAbout returns choices other attendees made about scoredID.
	ListAbout(ctx context.Context, eventID, scoredID uuid.UUID) ([]domain.MatchChoice, error)
}

type MatchResultRepository interface {
	Upsert(ctx context.Context, results []*domain.MatchResult) error
	ListForUser(ctx context.Context, eventID, userID uuid.UUID) ([]*domain.MatchResult, error)
}
