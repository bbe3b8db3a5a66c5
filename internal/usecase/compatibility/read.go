package compatibility

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

const maxTopMatches = 100

// ScoreView is a cached pair seen from one member.
type ScoreView struct {
	UserID     uuid.UUID             `json:"user_id"`
	MyScore    float64               `json:"my_score"`
	TheirScore float64               `json:"their_score"`
	FinalScore float64               `json:"final_score"`
	Band       domain.Band           `json:"band"`
	Breakdown  domain.ScoreBreakdown `json:"breakdown"`
	Narrative  string                `json:"narrative,omitempty"`
}

func newScoreView(viewer uuid.UUID, s *domain.CompatibilityScore) ScoreView {
	key := s.Key()
	mine, _ := s.ScoreFrom(viewer)
	other := key.Other(viewer)
	theirs, _ := s.ScoreFrom(other)
	return ScoreView{
		UserID:     other,
		MyScore:    mine,
		TheirScore: theirs,
		FinalScore: s.FinalScore,
		Band:       domain.BandFor(s.FinalScore),
		Breakdown:  s.Breakdown,
	}
}

// GetScore reads the cached pair of viewer and other. A missing row is
// domain.ErrScoreNotFound: not computed yet, or rejected by a dealbreaker.
// With narrate set and a narrator configured, a narrative is generated on
// the fly; it is never stored.
func (uc *CompatibilityUseCase) GetScore(ctx context.Context, viewer, other uuid.UUID, narrate bool) (*ScoreView, error) {
	if viewer == other {
		return nil, domain.ErrInvalidInput
	}
	key, _ := domain.CanonicalPair(viewer, other)
	score, err := uc.scoreRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	view := newScoreView(viewer, score)
	if narrate && uc.narrator != nil {
		slot, _ := key.SlotOf(viewer)
		text, err := uc.narrator.Narrate(ctx, score.Breakdown, slot)
		if err != nil {
			uc.log.Warn("Narrative generation failed", "error", err)
		} else {
			view.Narrative = text
		}
	}
	return &view, nil
}

// ListTopMatches lists viewer's cached pairs by final score, best first.
func (uc *CompatibilityUseCase) ListTopMatches(ctx context.Context, viewer uuid.UUID, limit int) ([]ScoreView, error) {
	if limit <= 0 || limit > maxTopMatches {
		limit = maxTopMatches
	}
	scores, err := uc.scoreRepo.ListForUser(ctx, viewer, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	views := make([]ScoreView, 0, len(scores))
	for _, s := range scores {
		views = append(views, newScoreView(viewer, s))
	}
	return views, nil
}
