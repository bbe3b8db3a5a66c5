package matchchoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/speeddate-backend/internal/repository"
)

type MatchChoiceUseCase struct {
	eventRepo        repository.EventRepository
	choiceRepo       repository.MatchChoiceRepository
	resultRepo       repository.MatchResultRepository
	privacyRepo      repository.PrivacyRepository
	subscriptionRepo repository.SubscriptionRepository
	log              *logger.Logger
	now              func() time.Time
}

func NewMatchChoiceUseCase(
	eventRepo repository.EventRepository,
	choiceRepo repository.MatchChoiceRepository,
	resultRepo repository.MatchResultRepository,
	privacyRepo repository.PrivacyRepository,
	subscriptionRepo repository.SubscriptionRepository,
	log *logger.Logger,
) *MatchChoiceUseCase {
	return &MatchChoiceUseCase{
		eventRepo:        eventRepo,
		choiceRepo:       choiceRepo,
		resultRepo:       resultRepo,
		privacyRepo:      privacyRepo,
		subscriptionRepo: subscriptionRepo,
		log:              log.With("component", "MatchChoiceUseCase"),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// ChoiceInput is the verdict on one candidate. A nil Share falls back to the
// scorer's privacy defaults.
type ChoiceInput struct {
	CandidateID uuid.UUID          `json:"candidate_id" binding:"required"`
	Choice      domain.Choice      `json:"choice" binding:"required"`
	Share       *domain.ShareFlags `json:"share,omitempty"`
}

// SubmitChoicesRequest carries a whole submission.
type SubmitChoicesRequest struct {
	Choices []ChoiceInput `json:"choices" binding:"required,dive"`
}

// FormCandidate is one row of the choice form.
type FormCandidate struct {
	UserID      uuid.UUID         `json:"user_id"`
	DisplayName string            `json:"display_name"`
	Share       domain.ShareFlags `json:"share"`
}

// ChoiceForm is what an attendee fills in after the event.
type ChoiceForm struct {
	EventID    uuid.UUID       `json:"event_id"`
	WindowOpen bool            `json:"window_open"`
	Submitted  bool            `json:"submitted"`
	Candidates []FormCandidate `json:"candidates"`
}

// GetChoiceForm lists the candidates userID must decide on, with share flags
// prefilled from their privacy defaults.
func (uc *MatchChoiceUseCase) GetChoiceForm(ctx context.Context, eventID, userID uuid.UUID) (*ChoiceForm, error) {
	event, err := uc.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	reg, err := uc.eventRepo.GetRegistration(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if !reg.Status.Participates() {
		return nil, domain.ErrNotOnRoster
	}

	candidates, err := uc.eligibleCandidates(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	defaults, err := uc.shareDefaults(ctx, userID)
	if err != nil {
		return nil, err
	}
	submitted, err := uc.choiceRepo.HasSubmitted(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check submission: %w", err)
	}

	form := &ChoiceForm{
		EventID:    eventID,
		WindowOpen: event.SubmissionWindowOpen(uc.now()),
		Submitted:  submitted,
		Candidates: make([]FormCandidate, 0, len(candidates)),
	}
	for _, c := range candidates {
		form.Candidates = append(form.Candidates, FormCandidate{
			UserID:      c.UserID,
			DisplayName: c.DisplayName,
			Share:       defaults,
		})
	}
	return form, nil
}

// SubmitChoices records scorerID's verdict on every eligible candidate in
// one all-or-nothing write, then resolves every pair whose other side has
// already submitted. Protocol violations come back as *domain.SubmissionError.
func (uc *MatchChoiceUseCase) SubmitChoices(ctx context.Context, eventID, scorerID uuid.UUID, inputs []ChoiceInput) error {
	event, err := uc.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}

	reg, err := uc.eventRepo.GetRegistration(ctx, eventID, scorerID)
	if err != nil && !errors.Is(err, domain.ErrNotOnRoster) {
		return fmt.Errorf("failed to get registration: %w", err)
	}
	if reg == nil || !reg.Status.Participates() {
		return domain.Rejected(domain.ReasonNotRegistered, "")
	}

	if !event.SubmissionWindowOpen(uc.now()) {
		return domain.Rejected(domain.ReasonWindowClosed, "")
	}

	// Fast path only; match_submissions is the authoritative guard.
	submitted, err := uc.choiceRepo.HasSubmitted(ctx, eventID, scorerID)
	if err != nil {
		return fmt.Errorf("failed to check submission: %w", err)
	}
	if submitted {
		return domain.Rejected(domain.ReasonAlreadySubmitted, "")
	}

	candidates, err := uc.eligibleCandidates(ctx, eventID, scorerID)
	if errors.Is(err, domain.ErrNotOnRoster) {
		return domain.Rejected(domain.ReasonNotRegistered, "no profile on roster")
	}
	if err != nil {
		return err
	}
	expected := make(map[uuid.UUID]bool, len(candidates))
	for _, c := range candidates {
		expected[c.UserID] = true
	}

	defaults, err := uc.shareDefaults(ctx, scorerID)
	if err != nil {
		return err
	}

	seen := make(map[uuid.UUID]bool, len(inputs))
	choices := make([]domain.MatchChoice, 0, len(inputs))
	for _, in := range inputs {
		if !in.Choice.Valid() {
			return domain.Rejected(domain.ReasonInvalidChoice, string(in.Choice))
		}
		if seen[in.CandidateID] {
			return domain.Rejected(domain.ReasonDuplicateCandidate, in.CandidateID.String())
		}
		if !expected[in.CandidateID] {
			return domain.Rejected(domain.ReasonUnexpectedCandidate, in.CandidateID.String())
		}
		seen[in.CandidateID] = true

		share := defaults
		if in.Share != nil {
			share = *in.Share
		}
		choices = append(choices, domain.MatchChoice{
			EventID:    eventID,
			ScorerID:   scorerID,
			ScoredID:   in.CandidateID,
			Choice:     in.Choice,
			ShareFlags: share,
		})
	}
	if len(seen) != len(expected) {
		return domain.Rejected(domain.ReasonIncompleteSubmission,
			fmt.Sprintf("%d of %d candidates chosen", len(seen), len(expected)))
	}

	if err := uc.choiceRepo.SubmitAll(ctx, eventID, scorerID, choices); err != nil {
		if _, ok := domain.RejectionReason(err); ok {
			return err
		}
		return fmt.Errorf("failed to store choices: %w", err)
	}
	uc.log.Info("Choices submitted", "event_id", eventID, "scorer_id", scorerID, "count", len(choices))

	// The submission is committed. A failed resolution is repaired by
	// ResolveEvent, so it does not fail the call.
	resolved, err := uc.resolveFor(ctx, eventID, scorerID, choices)
	if err != nil {
		uc.log.Error("Failed to resolve matches after submission", "event_id", eventID, "scorer_id", scorerID, "error", err)
		return nil
	}
	uc.log.Debug("Resolved pairs after submission", "event_id", eventID, "scorer_id", scorerID, "pairs", resolved)
	return nil
}

// resolveFor pairs the scorer's fresh choices with choices already made
// about the scorer and stores the resulting matches.
func (uc *MatchChoiceUseCase) resolveFor(ctx context.Context, eventID, scorerID uuid.UUID, mine []domain.MatchChoice) (int, error) {
	about, err := uc.choiceRepo.ListAbout(ctx, eventID, scorerID)
	if err != nil {
		return 0, fmt.Errorf("failed to list choices about scorer: %w", err)
	}
	theirs := make(map[uuid.UUID]domain.MatchChoice, len(about))
	for _, c := range about {
		theirs[c.ScorerID] = c
	}

	now := uc.now()
	var results []*domain.MatchResult
	for i := range mine {
		other, ok := theirs[mine[i].ScoredID]
		if !ok {
			continue
		}
		results = append(results, domain.ResolvePair(eventID, &mine[i], &other, now))
	}
	if len(results) == 0 {
		return 0, nil
	}
	if err := uc.resultRepo.Upsert(ctx, results); err != nil {
		return 0, fmt.Errorf("failed to store match results: %w", err)
	}
	return len(results), nil
}

// ResolveEvent re-derives every result of an event from its stored choices.
// It returns the number of resolved pairs.
func (uc *MatchChoiceUseCase) ResolveEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	if _, err := uc.eventRepo.GetByID(ctx, eventID); err != nil {
		return 0, err
	}
	choices, err := uc.choiceRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to list choices: %w", err)
	}

	type directed struct{ from, to uuid.UUID }
	index := make(map[directed]*domain.MatchChoice, len(choices))
	for i := range choices {
		index[directed{choices[i].ScorerID, choices[i].ScoredID}] = &choices[i]
	}

	now := uc.now()
	var results []*domain.MatchResult
	for i := range choices {
		x := &choices[i]
		// visit each pair once, from its canonical A side
		if !domain.Less(x.ScorerID, x.ScoredID) {
			continue
		}
		y, ok := index[directed{x.ScoredID, x.ScorerID}]
		if !ok {
			continue
		}
		results = append(results, domain.ResolvePair(eventID, x, y, now))
	}

	if len(results) > 0 {
		if err := uc.resultRepo.Upsert(ctx, results); err != nil {
			return 0, fmt.Errorf("failed to store match results: %w", err)
		}
	}
	uc.log.Info("Event resolved", "event_id", eventID, "pairs", len(results))
	return len(results), nil
}

// eligibleCandidates returns the roster members userID may choose on: every
// other attendee whose gender userID's preference admits.
func (uc *MatchChoiceUseCase) eligibleCandidates(ctx context.Context, eventID, userID uuid.UUID) ([]*domain.Profile, error) {
	roster, err := uc.eventRepo.ListRoster(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	var self *domain.Profile
	for _, p := range roster {
		if p.UserID == userID {
			self = p
			break
		}
	}
	if self == nil {
		return nil, domain.ErrNotOnRoster
	}

	var out []*domain.Profile
	for _, p := range roster {
		if p.UserID != userID && self.Seeks(p.Gender) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (uc *MatchChoiceUseCase) shareDefaults(ctx context.Context, userID uuid.UUID) (domain.ShareFlags, error) {
	flags, found, err := uc.privacyRepo.GetDefaults(ctx, userID)
	if err != nil {
		return domain.ShareFlags{}, fmt.Errorf("failed to get privacy defaults: %w", err)
	}
	if !found {
		return domain.DefaultShareFlags(), nil
	}
	return flags, nil
}
