package compatibility

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/speeddate-backend/internal/repository"
	"github.com/gdugdh24/speeddate-backend/internal/scoring"
)

// WeightSource supplies the weights for a run.
type WeightSource interface {
	Current(ctx context.Context) (domain.MatchWeights, error)
}

// Narrator writes a human narrative for a cached breakdown, addressed to the
// member in slot viewer.
type Narrator interface {
	Narrate(ctx context.Context, breakdown domain.ScoreBreakdown, viewer domain.Slot) (string, error)
}

type Options struct {
	PoolLimit          int
	ChunkSize          int
	ChunkRetryAttempts int
	ChunkRetryBackoff  time.Duration
	Parallelism        int
}

func DefaultOptions() Options {
	return Options{
		PoolLimit:          500,
		ChunkSize:          100,
		ChunkRetryAttempts: 3,
		ChunkRetryBackoff:  500 * time.Millisecond,
		Parallelism:        4,
	}
}

type CompatibilityUseCase struct {
	profileRepo     repository.ProfileRepository
	assessmentRepo  repository.AssessmentRepository
	dealbreakerRepo repository.DealbreakerRepository
	ratingRepo      repository.RatingRepository
	tasteRepo       repository.TasteVectorRepository
	scoreRepo       repository.ScoreRepository
	weights         WeightSource
	narrator        Narrator
	opts            Options
	now             func() time.Time
	log             *logger.Logger
}

func NewCompatibilityUseCase(
	profileRepo repository.ProfileRepository,
	assessmentRepo repository.AssessmentRepository,
	dealbreakerRepo repository.DealbreakerRepository,
	ratingRepo repository.RatingRepository,
	tasteRepo repository.TasteVectorRepository,
	scoreRepo repository.ScoreRepository,
	weights WeightSource,
	narrator Narrator,
	opts Options,
	log *logger.Logger,
) *CompatibilityUseCase {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if opts.PoolLimit < 1 {
		opts.PoolLimit = DefaultOptions().PoolLimit
	}
	if opts.ChunkSize < 1 {
		opts.ChunkSize = DefaultOptions().ChunkSize
	}
	if opts.ChunkRetryAttempts < 1 {
		opts.ChunkRetryAttempts = 1
	}
	return &CompatibilityUseCase{
		profileRepo:     profileRepo,
		assessmentRepo:  assessmentRepo,
		dealbreakerRepo: dealbreakerRepo,
		ratingRepo:      ratingRepo,
		tasteRepo:       tasteRepo,
		scoreRepo:       scoreRepo,
		weights:         weights,
		narrator:        narrator,
		opts:            opts,
		now:             time.Now,
		log:             log.With("component", "CompatibilityUseCase"),
	}
}

// SetNarrator enables narratives on GetScore. Call before serving requests.
func (uc *CompatibilityUseCase) SetNarrator(n Narrator) {
	uc.narrator = n
}

// asOf pins ages to the current UTC day so every run on the same day sees
// identical inputs.
func (uc *CompatibilityUseCase) asOf() time.Time {
	y, m, d := uc.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// pairSet records pairs committed during a full recompute. A pair enters
// the set only once its chunk is upserted, so a member whose run fails
// leaves its pairs for the other member to score.
type pairSet struct {
	mu   sync.Mutex
	done map[domain.PairKey]struct{}
}

func newPairSet() *pairSet {
	return &pairSet{done: make(map[domain.PairKey]struct{})}
}

func (s *pairSet) has(key domain.PairKey) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.done[key]
	return ok
}

// commit records the chunk's pairs and returns how many were new.
func (s *pairSet) commit(chunk []*domain.CompatibilityScore) int {
	if s == nil {
		return len(chunk)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, sc := range chunk {
		key := sc.Key()
		if _, ok := s.done[key]; ok {
			continue
		}
		s.done[key] = struct{}{}
		added++
	}
	return added
}

// RecalculateUser drops every cached row touching userID and rebuilds every
// pair the user belongs to: the user's own candidate pool plus the members
// whose preference admits the user. It returns the number of pairs
// persisted. Chunks that still fail after retries are skipped and reported
// in the joined error; committed chunks stay.
func (uc *CompatibilityUseCase) RecalculateUser(ctx context.Context, userID uuid.UUID) (int, error) {
	weights, err := uc.weights.Current(ctx)
	if err != nil {
		return 0, err
	}

	if _, err := uc.scoreRepo.DeleteForUser(ctx, userID); err != nil {
		return 0, fmt.Errorf("failed to invalidate scores for %s: %w", userID, err)
	}

	subject, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get profile: %w", err)
	}
	if !subject.IsActive {
		return 0, nil
	}

	pool, err := uc.candidatePool(ctx, subject)
	if err != nil {
		return 0, err
	}
	seekers, err := uc.profileRepo.ListSeekers(ctx, subject, uc.opts.PoolLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to list seekers: %w", err)
	}
	if len(seekers) > uc.opts.PoolLimit {
		seekers = seekers[:uc.opts.PoolLimit]
	}
	pool = mergePools(pool, seekers)

	scores, err := uc.scorePool(ctx, subject, pool, weights, uc.asOf(), nil)
	if err != nil {
		return 0, err
	}
	return uc.persist(ctx, scores, nil)
}

// mergePools appends the profiles of extra not already in pool.
func mergePools(pool, extra []*domain.Profile) []*domain.Profile {
	in := make(map[uuid.UUID]struct{}, len(pool))
	for _, p := range pool {
		in[p.UserID] = struct{}{}
	}
	for _, p := range extra {
		if _, ok := in[p.UserID]; ok {
			continue
		}
		in[p.UserID] = struct{}{}
		pool = append(pool, p)
	}
	return pool
}

// RecalculateAll clears the whole cache and recomputes every active user,
// several users at a time. Every pair lies in at least one member's own
// pool, so walking each user's pool covers the cache; a pair already
// committed by the other member is skipped.
func (uc *CompatibilityUseCase) RecalculateAll(ctx context.Context) (int, error) {
	weights, err := uc.weights.Current(ctx)
	if err != nil {
		return 0, err
	}

	if err := uc.scoreRepo.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear score cache: %w", err)
	}

	userIDs, err := uc.profileRepo.ListActiveUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active users: %w", err)
	}

	asOf := uc.asOf()
	done := newPairSet()
	started := time.Now()

	var (
		total  atomic.Int64
		errsMu sync.Mutex
		errs   []error
	)
	record := func(err error) {
		errsMu.Lock()
		errs = append(errs, err)
		errsMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Parallelism)
	for _, id := range userIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			subject, err := uc.profileRepo.GetByUserID(gctx, id)
			if err != nil {
				record(fmt.Errorf("user %s: %w", id, err))
				return nil
			}
			pool, err := uc.candidatePool(gctx, subject)
			if err != nil {
				record(fmt.Errorf("user %s: %w", id, err))
				return nil
			}
			scores, err := uc.scorePool(gctx, subject, pool, weights, asOf, done)
			if err != nil {
				record(fmt.Errorf("user %s: %w", id, err))
				return nil
			}
			n, err := uc.persist(gctx, scores, done)
			total.Add(int64(n))
			if err != nil {
				record(fmt.Errorf("user %s: %w", id, err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(total.Load()), err
	}

	uc.log.Info("Full recompute finished",
		"users", len(userIDs),
		"pairs", total.Load(),
		"failures", len(errs),
		"duration", time.Since(started).String(),
	)
	return int(total.Load()), errors.Join(errs...)
}

// candidatePool is subject's own pool: seeked genders, capped.
func (uc *CompatibilityUseCase) candidatePool(ctx context.Context, subject *domain.Profile) ([]*domain.Profile, error) {
	candidates, err := uc.profileRepo.ListCandidates(ctx, subject, subject.SeekedGenders(), uc.opts.PoolLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	if len(candidates) > uc.opts.PoolLimit {
		candidates = candidates[:uc.opts.PoolLimit]
	}
	return candidates, nil
}

// scorePool scores subject against every candidate not already committed
// in done. Rejected pairs produce no score.
func (uc *CompatibilityUseCase) scorePool(
	ctx context.Context,
	subject *domain.Profile,
	candidates []*domain.Profile,
	weights domain.MatchWeights,
	asOf time.Time,
	done *pairSet,
) ([]*domain.CompatibilityScore, error) {
	pending := make([]*domain.Profile, 0, len(candidates))
	for _, c := range candidates {
		if c.UserID == subject.UserID {
			continue
		}
		key, _ := domain.CanonicalPair(subject.UserID, c.UserID)
		if done.has(key) {
			continue
		}
		pending = append(pending, c)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	b, err := uc.loadBundle(ctx, subject, pending)
	if err != nil {
		return nil, err
	}

	self := b.participant(subject)
	scores := make([]*domain.CompatibilityScore, 0, len(pending))
	rejected := 0
	for _, c := range pending {
		res := scoring.Score(scoring.Input{
			A:       self,
			B:       b.participant(c),
			Ratings: b.ratings[c.UserID],
			Weights: weights,
			AsOf:    asOf,
		})
		if res.Rejected {
			rejected++
			continue
		}
		scores = append(scores, res.Score)
	}

	uc.log.Debug("Scored candidate pool",
		"user_id", subject.UserID,
		"candidates", len(pending),
		"accepted", len(scores),
		"rejected", rejected,
	)
	return scores, nil
}

// bundle is everything fetched in bulk for one subject and its pool.
type bundle struct {
	assessments  map[uuid.UUID]*domain.CompatibilityAssessment
	dealbreakers map[uuid.UUID]*domain.DealbreakerPreferences
	tastes       map[uuid.UUID]*domain.TasteVector
	ratings      map[uuid.UUID][]domain.DateRating
}

func (b *bundle) participant(p *domain.Profile) scoring.Participant {
	return scoring.Participant{
		Profile:      p,
		Assessment:   b.assessments[p.UserID],
		Dealbreakers: b.dealbreakers[p.UserID],
		Taste:        b.tastes[p.UserID],
	}
}

func (uc *CompatibilityUseCase) loadBundle(ctx context.Context, subject *domain.Profile, candidates []*domain.Profile) (*bundle, error) {
	others := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		others[i] = c.UserID
	}
	all := append([]uuid.UUID{subject.UserID}, others...)

	assessments, err := uc.assessmentRepo.GetByUserIDs(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessments: %w", err)
	}
	dealbreakers, err := uc.dealbreakerRepo.GetByUserIDs(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("failed to load dealbreakers: %w", err)
	}
	tastes, err := uc.tasteRepo.GetByUserIDs(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("failed to load taste vectors: %w", err)
	}
	ratings, err := uc.ratingRepo.ListBetween(ctx, subject.UserID, others)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	byPartner := make(map[uuid.UUID][]domain.DateRating)
	for _, r := range ratings {
		partner := r.ToUserID
		if partner == subject.UserID {
			partner = r.FromUserID
		}
		byPartner[partner] = append(byPartner[partner], r)
	}

	return &bundle{
		assessments:  assessments,
		dealbreakers: dealbreakers,
		tastes:       tastes,
		ratings:      byPartner,
	}, nil
}

// persist upserts scores in fixed-size chunks, in canonical key order, and
// returns the number of pairs written. With done set, committed chunks are
// recorded there and only pairs new to done are counted.
func (uc *CompatibilityUseCase) persist(ctx context.Context, scores []*domain.CompatibilityScore, done *pairSet) (int, error) {
	sort.Slice(scores, func(i, j int) bool {
		ki, kj := scores[i].Key(), scores[j].Key()
		if ki.A != kj.A {
			return domain.Less(ki.A, kj.A)
		}
		return domain.Less(ki.B, kj.B)
	})

	size := uc.opts.ChunkSize
	written := 0
	var errs []error
	for start := 0; start < len(scores); start += size {
		end := start + size
		if end > len(scores) {
			end = len(scores)
		}
		chunk := scores[start:end]
		if err := uc.upsertChunk(ctx, chunk); err != nil {
			uc.log.Error("Score chunk failed after retries",
				"offset", start,
				"size", len(chunk),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("chunk [%d:%d]: %w", start, end, err))
			continue
		}
		written += done.commit(chunk)
	}
	return written, errors.Join(errs...)
}

func (uc *CompatibilityUseCase) upsertChunk(ctx context.Context, chunk []*domain.CompatibilityScore) error {
	var err error
	for attempt := 1; attempt <= uc.opts.ChunkRetryAttempts; attempt++ {
		if err = uc.scoreRepo.UpsertBatch(ctx, chunk); err == nil {
			return nil
		}
		uc.log.Warn("Score chunk upsert failed", "attempt", attempt, "size", len(chunk), "error", err)
		if attempt == uc.opts.ChunkRetryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(uc.opts.ChunkRetryBackoff * time.Duration(attempt)):
		}
	}
	return err
}
