// Package memory is an in-process implementation of the repository
// interfaces. It backs tests and the -dry-run score sink of
// cmd/recalculate; all data is lost on exit.
package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

type choiceKey struct {
	event  uuid.UUID
	scorer uuid.UUID
	scored uuid.UUID
}

type resultKey struct {
	event uuid.UUID
	pair  domain.PairKey
}

// Store holds every table. The zero value is not usable; call New.
type Store struct {
	mu sync.Mutex

	profiles     map[uuid.UUID]*domain.Profile
	assessments  map[uuid.UUID]*domain.CompatibilityAssessment
	dealbreakers map[uuid.UUID]*domain.DealbreakerPreferences
	tastes       map[uuid.UUID]*domain.TasteVector
	ratings      []domain.DateRating
	nextRatingID int64
	scores       map[domain.PairKey]*domain.CompatibilityScore
	weights      *domain.MatchWeights

	events        map[uuid.UUID]*domain.Event
	registrations map[uuid.UUID]map[uuid.UUID]domain.RegistrationStatus
	privacy       map[uuid.UUID]domain.ShareFlags
	vip           map[uuid.UUID]bool
	submissions   map[uuid.UUID]map[uuid.UUID]bool
	choices       map[choiceKey]domain.MatchChoice
	results       map[resultKey]*domain.MatchResult

	// UpsertHook, when set, runs before every score batch upsert; a non-nil
	// error fails that batch without writing it.
	UpsertHook func(batch []*domain.CompatibilityScore) error
	// IgnoreCandidateLimit makes ListCandidates and ListSeekers ignore limit.
	IgnoreCandidateLimit bool
	// LastCandidateLimit records the limit passed to ListCandidates.
	LastCandidateLimit int
}

func New() *Store {
	return &Store{
		profiles:      make(map[uuid.UUID]*domain.Profile),
		assessments:   make(map[uuid.UUID]*domain.CompatibilityAssessment),
		dealbreakers:  make(map[uuid.UUID]*domain.DealbreakerPreferences),
		tastes:        make(map[uuid.UUID]*domain.TasteVector),
		scores:        make(map[domain.PairKey]*domain.CompatibilityScore),
		events:        make(map[uuid.UUID]*domain.Event),
		registrations: make(map[uuid.UUID]map[uuid.UUID]domain.RegistrationStatus),
		privacy:       make(map[uuid.UUID]domain.ShareFlags),
		vip:           make(map[uuid.UUID]bool),
		submissions:   make(map[uuid.UUID]map[uuid.UUID]bool),
		choices:       make(map[choiceKey]domain.MatchChoice),
		results:       make(map[resultKey]*domain.MatchResult),
	}
}

func (s *Store) PutProfile(p *domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.profiles[p.UserID] = &cp
}

func (s *Store) PutAssessment(a *domain.CompatibilityAssessment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	cp.Answers = append([]int(nil), a.Answers...)
	s.assessments[a.UserID] = &cp
}

func (s *Store) PutDealbreakers(d *domain.DealbreakerPreferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.dealbreakers[d.UserID] = &cp
}

func (s *Store) PutEvent(e *domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.events[e.ID] = &cp
}

func (s *Store) Register(eventID, userID uuid.UUID, status domain.RegistrationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registrations[eventID] == nil {
		s.registrations[eventID] = make(map[uuid.UUID]domain.RegistrationStatus)
	}
	s.registrations[eventID][userID] = status
}

func (s *Store) PutPrivacyDefaults(userID uuid.UUID, flags domain.ShareFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.privacy[userID] = flags
}

func (s *Store) SetVIP(userID uuid.UUID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vip[userID] = active
}

// PutScore seeds a cache row directly.
func (s *Store) PutScore(score *domain.CompatibilityScore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *score
	s.scores[score.Key()] = &cp
}

// Scores returns a copy of every cached row in canonical key order.
func (s *Store) Scores() []domain.CompatibilityScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CompatibilityScore, 0, len(s.scores))
	for _, sc := range s.scores {
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessKey(out[i].Key(), out[j].Key())
	})
	return out
}

// Taste returns the stored vector for userID, if any.
func (s *Store) Taste(userID uuid.UUID) (*domain.TasteVector, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tastes[userID]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

// Results returns every resolved result of an event in canonical order.
func (s *Store) Results(eventID uuid.UUID) []domain.MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.MatchResult
	for k, r := range s.results {
		if k.event == eventID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return lessKey(domain.PairKey{A: out[i].UserA, B: out[i].UserB}, domain.PairKey{A: out[j].UserA, B: out[j].UserB})
	})
	return out
}

func lessKey(x, y domain.PairKey) bool {
	if x.A != y.A {
		return domain.Less(x.A, y.A)
	}
	return domain.Less(x.B, y.B)
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return domain.Less(ids[i], ids[j]) })
}
