package matchchoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

// RevealedMatch is a mutual result seen from one side: the counterpart and
// whatever contact channels they chose to share.
type RevealedMatch struct {
	UserID      uuid.UUID         `json:"user_id"`
	DisplayName string            `json:"display_name"`
	ResultType  domain.ResultType `json:"result_type"`
	TheirShare  domain.ShareFlags `json:"their_share"`
	ResolvedAt  time.Time         `json:"resolved_at"`
}

// MatchResults is the results page of one attendee.
type MatchResults struct {
	EventID   uuid.UUID       `json:"event_id"`
	Submitted bool            `json:"submitted"`
	Matches   []RevealedMatch `json:"matches"`
	// Pending counts other attendees who have not submitted yet.
	Pending int `json:"pending"`
}

// Admirer is someone who chose date or friend about the viewer.
type Admirer struct {
	UserID      uuid.UUID     `json:"user_id"`
	DisplayName string        `json:"display_name"`
	Choice      domain.Choice `json:"choice"`
}

// GetMatchResults returns userID's mutual matches at the event. No-match
// outcomes are never revealed.
func (uc *MatchChoiceUseCase) GetMatchResults(ctx context.Context, eventID, userID uuid.UUID) (*MatchResults, error) {
	if _, err := uc.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	roster, err := uc.rosterOf(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	results, err := uc.resultRepo.ListForUser(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	submitters, err := uc.choiceRepo.ListSubmitters(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submitters: %w", err)
	}

	out := &MatchResults{EventID: eventID, Matches: []RevealedMatch{}}
	done := make(map[uuid.UUID]bool, len(submitters))
	for _, id := range submitters {
		done[id] = true
	}
	out.Submitted = done[userID]
	for id := range roster {
		if id != userID && !done[id] {
			out.Pending++
		}
	}

	for _, r := range results {
		if r.ResultType == domain.ResultNoMatch {
			continue
		}
		other, _ := r.GetOtherUserID(userID)
		m := RevealedMatch{
			UserID:     other,
			ResultType: r.ResultType,
			TheirShare: r.SharedWith(userID),
			ResolvedAt: r.ResolvedAt,
		}
		if p, ok := roster[other]; ok {
			m.DisplayName = p.DisplayName
		}
		out.Matches = append(out.Matches, m)
	}
	return out, nil
}

// GetVIPBonus lists everyone who chose date or friend about userID,
// regardless of what userID chose. Active VIP subscribers only.
func (uc *MatchChoiceUseCase) GetVIPBonus(ctx context.Context, eventID, userID uuid.UUID) ([]Admirer, error) {
	vip, err := uc.subscriptionRepo.IsActiveVIP(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check subscription: %w", err)
	}
	if !vip {
		return nil, domain.ErrVIPRequired
	}
	if _, err := uc.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	roster, err := uc.rosterOf(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	about, err := uc.choiceRepo.ListAbout(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list choices: %w", err)
	}
	admirers := []Admirer{}
	for _, c := range about {
		if !c.Choice.Positive() {
			continue
		}
		a := Admirer{UserID: c.ScorerID, Choice: c.Choice}
		if p, ok := roster[c.ScorerID]; ok {
			a.DisplayName = p.DisplayName
		}
		admirers = append(admirers, a)
	}
	return admirers, nil
}

// rosterOf returns the event roster keyed by user, failing with
// domain.ErrNotOnRoster when userID is not part of it.
func (uc *MatchChoiceUseCase) rosterOf(ctx context.Context, eventID, userID uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	profiles, err := uc.eventRepo.ListRoster(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	roster := make(map[uuid.UUID]*domain.Profile, len(profiles))
	for _, p := range profiles {
		roster[p.UserID] = p
	}
	if _, ok := roster[userID]; !ok {
		return nil, domain.ErrNotOnRoster
	}
	return roster, nil
}
