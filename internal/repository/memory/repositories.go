package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/repository"
)

type profileRepo struct{ s *Store }

func (s *Store) ProfileRepository() repository.ProfileRepository { return profileRepo{s} }

func (r profileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r profileRepo) GetByUserIDs(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID]*domain.Profile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := r.s.profiles[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r profileRepo) ListCandidates(_ context.Context, subject *domain.Profile, genders []domain.Gender, limit int) ([]*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.LastCandidateLimit = limit
	return r.s.sameCountry(subject, limit, func(p *domain.Profile) bool {
		return containsGender(genders, p.Gender)
	}), nil
}

func (r profileRepo) ListSeekers(_ context.Context, subject *domain.Profile, limit int) ([]*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sameCountry(subject, limit, func(p *domain.Profile) bool {
		return p.Seeks(subject.Gender)
	}), nil
}

// sameCountry lists active profiles in subject's country accepted by keep,
// in created_at, user_id order. Callers hold s.mu.
func (s *Store) sameCountry(subject *domain.Profile, limit int, keep func(*domain.Profile) bool) []*domain.Profile {
	var out []*domain.Profile
	if subject.Country == nil {
		return out
	}
	for _, p := range s.profiles {
		if !p.IsActive || p.UserID == subject.UserID || p.Country == nil || *p.Country != *subject.Country {
			continue
		}
		if !keep(p) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return domain.Less(out[i].UserID, out[j].UserID)
	})
	if !s.IgnoreCandidateLimit && limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func containsGender(genders []domain.Gender, g domain.Gender) bool {
	for _, v := range genders {
		if v == g {
			return true
		}
	}
	return false
}

func (r profileRepo) ListActiveUserIDs(context.Context) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for id, p := range r.s.profiles {
		if p.IsActive {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids, nil
}

type assessmentRepo struct{ s *Store }

func (s *Store) AssessmentRepository() repository.AssessmentRepository { return assessmentRepo{s} }

func (r assessmentRepo) GetByUserIDs(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.CompatibilityAssessment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID]*domain.CompatibilityAssessment, len(userIDs))
	for _, id := range userIDs {
		if a, ok := r.s.assessments[id]; ok {
			cp := *a
			cp.Answers = append([]int(nil), a.Answers...)
			out[id] = &cp
		}
	}
	return out, nil
}

type dealbreakerRepo struct{ s *Store }

func (s *Store) DealbreakerRepository() repository.DealbreakerRepository { return dealbreakerRepo{s} }

func (r dealbreakerRepo) GetByUserIDs(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.DealbreakerPreferences, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID]*domain.DealbreakerPreferences, len(userIDs))
	for _, id := range userIDs {
		if d, ok := r.s.dealbreakers[id]; ok {
			cp := *d
			out[id] = &cp
		}
	}
	return out, nil
}

type ratingRepo struct{ s *Store }

func (s *Store) RatingRepository() repository.RatingRepository { return ratingRepo{s} }

func (r ratingRepo) Create(_ context.Context, rating *domain.DateRating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.ratings {
		if existing.EventID == rating.EventID && existing.FromUserID == rating.FromUserID && existing.ToUserID == rating.ToUserID {
			return domain.ErrRatingAlreadyExists
		}
	}
	r.s.nextRatingID++
	rating.ID = r.s.nextRatingID
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}
	r.s.ratings = append(r.s.ratings, *rating)
	return nil
}

func (r ratingRepo) ListBetween(_ context.Context, userID uuid.UUID, others []uuid.UUID) ([]domain.DateRating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := make(map[uuid.UUID]bool, len(others))
	for _, id := range others {
		set[id] = true
	}
	var out []domain.DateRating
	for _, rt := range r.s.ratings {
		if (rt.FromUserID == userID && set[rt.ToUserID]) || (rt.ToUserID == userID && set[rt.FromUserID]) {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (r ratingRepo) ListAll(context.Context) ([]domain.DateRating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.DateRating(nil), r.s.ratings...), nil
}

type tasteRepo struct{ s *Store }

func (s *Store) TasteVectorRepository() repository.TasteVectorRepository { return tasteRepo{s} }

func (r tasteRepo) GetByUserIDs(_ context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.TasteVector, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[uuid.UUID]*domain.TasteVector, len(userIDs))
	for _, id := range userIDs {
		if t, ok := r.s.tastes[id]; ok {
			cp := *t
			out[id] = &cp
		}
	}
	return out, nil
}

func (r tasteRepo) Upsert(_ context.Context, vector *domain.TasteVector) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *vector
	r.s.tastes[vector.UserID] = &cp
	return nil
}

type scoreRepo struct{ s *Store }

func (s *Store) ScoreRepository() repository.ScoreRepository { return scoreRepo{s} }

func (r scoreRepo) UpsertBatch(_ context.Context, scores []*domain.CompatibilityScore) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.UpsertHook != nil {
		if err := r.s.UpsertHook(scores); err != nil {
			return err
		}
	}
	for _, sc := range scores {
		cp := *sc
		r.s.scores[sc.Key()] = &cp
	}
	return nil
}

func (r scoreRepo) Get(_ context.Context, key domain.PairKey) (*domain.CompatibilityScore, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sc, ok := r.s.scores[key]
	if !ok {
		return nil, domain.ErrScoreNotFound
	}
	cp := *sc
	return &cp, nil
}

func (r scoreRepo) ListForUser(_ context.Context, userID uuid.UUID, limit int) ([]*domain.CompatibilityScore, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.CompatibilityScore
	for k, sc := range r.s.scores {
		if k.A == userID || k.B == userID {
			cp := *sc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FinalScore != out[j].FinalScore {
			return out[i].FinalScore > out[j].FinalScore
		}
		return lessKey(out[i].Key(), out[j].Key())
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r scoreRepo) DeleteForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k := range r.s.scores {
		if k.A == userID || k.B == userID {
			delete(r.s.scores, k)
			n++
		}
	}
	return n, nil
}

func (r scoreRepo) DeleteAll(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.scores = make(map[domain.PairKey]*domain.CompatibilityScore)
	return nil
}

type weightRepo struct{ s *Store }

func (s *Store) WeightRepository() repository.WeightRepository { return weightRepo{s} }

func (r weightRepo) Get(context.Context) (domain.MatchWeights, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.weights == nil {
		return domain.MatchWeights{}, false, nil
	}
	return *r.s.weights, true, nil
}

func (r weightRepo) Save(_ context.Context, w domain.MatchWeights) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.weights = &w
	return nil
}

type eventRepo struct{ s *Store }

func (s *Store) EventRepository() repository.EventRepository { return eventRepo{s} }

func (r eventRepo) GetByID(_ context.Context, eventID uuid.UUID) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r eventRepo) GetRegistration(_ context.Context, eventID, userID uuid.UUID) (*domain.EventRegistration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	status, ok := r.s.registrations[eventID][userID]
	if !ok {
		return nil, domain.ErrNotOnRoster
	}
	return &domain.EventRegistration{EventID: eventID, UserID: userID, Status: status}, nil
}

func (r eventRepo) ListRoster(_ context.Context, eventID uuid.UUID) ([]*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Profile
	for userID, status := range r.s.registrations[eventID] {
		if !status.Participates() {
			continue
		}
		if p, ok := r.s.profiles[userID]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return domain.Less(out[i].UserID, out[j].UserID) })
	return out, nil
}

type privacyRepo struct{ s *Store }

func (s *Store) PrivacyRepository() repository.PrivacyRepository { return privacyRepo{s} }

func (r privacyRepo) GetDefaults(_ context.Context, userID uuid.UUID) (domain.ShareFlags, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	flags, ok := r.s.privacy[userID]
	return flags, ok, nil
}

type subscriptionRepo struct{ s *Store }

func (s *Store) SubscriptionRepository() repository.SubscriptionRepository { return subscriptionRepo{s} }

func (r subscriptionRepo) IsActiveVIP(_ context.Context, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.vip[userID], nil
}

type choiceRepo struct{ s *Store }

func (s *Store) MatchChoiceRepository() repository.MatchChoiceRepository { return choiceRepo{s} }

func (r choiceRepo) HasSubmitted(_ context.Context, eventID, scorerID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.submissions[eventID][scorerID], nil
}

func (r choiceRepo) SubmitAll(_ context.Context, eventID, scorerID uuid.UUID, choices []domain.MatchChoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.submissions[eventID][scorerID] {
		return domain.Rejected(domain.ReasonAlreadySubmitted, "")
	}
	staged := make(map[choiceKey]domain.MatchChoice, len(choices))
	now := time.Now().UTC()
	for _, c := range choices {
		k := choiceKey{event: eventID, scorer: scorerID, scored: c.ScoredID}
		if _, dup := staged[k]; dup {
			return domain.Rejected(domain.ReasonDuplicateCandidate, "")
		}
		c.EventID, c.ScorerID = eventID, scorerID
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		staged[k] = c
	}
	if r.s.submissions[eventID] == nil {
		r.s.submissions[eventID] = make(map[uuid.UUID]bool)
	}
	r.s.submissions[eventID][scorerID] = true
	for k, c := range staged {
		r.s.choices[k] = c
	}
	return nil
}

func (r choiceRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]domain.MatchChoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.MatchChoice
	for k, c := range r.s.choices {
		if k.event == eventID {
			out = append(out, c)
		}
	}
	sortChoices(out)
	return out, nil
}

func (r choiceRepo) ListSubmitters(_ context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for id, ok := range r.s.submissions[eventID] {
		if ok {
			ids = append(ids, id)
		}
	}
	sortIDs(ids)
	return ids, nil
}

func (r choiceRepo) ListAbout(_ context.Context, eventID, scoredID uuid.UUID) ([]domain.MatchChoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.MatchChoice
	for k, c := range r.s.choices {
		if k.event == eventID && k.scored == scoredID {
			out = append(out, c)
		}
	}
	sortChoices(out)
	return out, nil
}

func sortChoices(cs []domain.MatchChoice) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].ScorerID != cs[j].ScorerID {
			return domain.Less(cs[i].ScorerID, cs[j].ScorerID)
		}
		return domain.Less(cs[i].ScoredID, cs[j].ScoredID)
	})
}

type resultRepo struct{ s *Store }

func (s *Store) MatchResultRepository() repository.MatchResultRepository { return resultRepo{s} }

func (r resultRepo) Upsert(_ context.Context, results []*domain.MatchResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range results {
		cp := *res
		r.s.results[resultKey{event: res.EventID, pair: domain.PairKey{A: res.UserA, B: res.UserB}}] = &cp
	}
	return nil
}

func (r resultRepo) ListForUser(_ context.Context, eventID, userID uuid.UUID) ([]*domain.MatchResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.MatchResult
	for k, res := range r.s.results {
		if k.event == eventID && res.HasUser(userID) {
			cp := *res
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return lessKey(domain.PairKey{A: out[i].UserA, B: out[i].UserB}, domain.PairKey{A: out[j].UserA, B: out[j].UserB})
	})
	return out, nil
}
