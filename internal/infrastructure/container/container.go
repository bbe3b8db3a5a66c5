package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/gdugdh24/speeddate-backend/internal/config"
	"github.com/gdugdh24/speeddate-backend/internal/delivery/http"
	"github.com/gdugdh24/speeddate-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/speeddate-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/database"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/gemini"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/server"
	"github.com/gdugdh24/speeddate-backend/internal/jobs"
	"github.com/gdugdh24/speeddate-backend/internal/repository"
	"github.com/gdugdh24/speeddate-backend/internal/repository/memory"
	"github.com/gdugdh24/speeddate-backend/internal/repository/postgres"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/auth"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/compatibility"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/matchchoice"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/rating"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/taste"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/weights"
)

// UseCases groups the application services built on one database.
type UseCases struct {
	Compatibility *compatibility.CompatibilityUseCase
	Learner       *taste.LearnerUseCase
	Weights       *weights.WeightsUseCase
	Rating        *rating.RatingUseCase
	MatchChoice   *matchchoice.MatchChoiceUseCase
	Tokens        *auth.TokenUseCase
}

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Log       *logger.Logger
	DB        *sqlx.DB
	Redis     *redis.Client
	Gemini    *gemini.GeminiClient
	UseCases  *UseCases
	Server    *server.Server
	Scheduler *jobs.Scheduler
	// DryRun receives score writes instead of postgres when the batch
	// container was built with dryRun set.
	DryRun *memory.Store
}

// NewContainer wires the HTTP API and, when enabled, the nightly scheduler.
func NewContainer(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c, err := NewBatchContainer(ctx, cfg, log, false)
	if err != nil {
		return nil, err
	}

	if cfg.Gemini.APIKey != "" {
		geminiClient, err := gemini.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
		if err != nil {
			// narratives are optional
			log.Warn("Gemini client unavailable, narratives disabled", "error", err)
		} else {
			c.Gemini = geminiClient
			c.UseCases.Compatibility.SetNarrator(geminiClient)
		}
	}

	if cfg.Jobs.Enabled {
		redisClient, err := database.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		c.Redis = redisClient
		c.Scheduler = jobs.NewScheduler(
			c.UseCases.Learner,
			c.UseCases.Compatibility,
			jobs.NewRedisLocker(redisClient),
			cfg.Jobs,
			log,
		)
	}

	uc := c.UseCases
	router := http.NewRouter(
		handler.NewAuthHandler(),
		handler.NewRatingHandler(uc.Rating),
		handler.NewChoiceHandler(uc.MatchChoice),
		handler.NewCompatibilityHandler(uc.Compatibility),
		handler.NewAdminHandler(uc.Compatibility, uc.Learner, uc.Weights, uc.MatchChoice),
		middleware.NewAuthMiddleware(uc.Tokens),
	)
	c.Server = server.NewServer(&cfg.Server, router.Setup(), log)

	return c, nil
}

// NewBatchContainer connects to postgres and builds the use cases only. It
// backs one-shot tools that need no HTTP server or redis. With dryRun set,
// everything is still read from postgres but the score cache lives in
// c.DryRun, so the stored cache is left untouched.
func NewBatchContainer(ctx context.Context, cfg *config.Config, log *logger.Logger, dryRun bool) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	profileRepo := postgres.NewProfileRepository(db)
	assessmentRepo := postgres.NewAssessmentRepository(db)
	dealbreakerRepo := postgres.NewDealbreakerRepository(db)
	ratingRepo := postgres.NewRatingRepository(db)
	tasteRepo := postgres.NewTasteVectorRepository(db)
	var (
		scoreRepo repository.ScoreRepository = postgres.NewScoreRepository(db)
		sink      *memory.Store
	)
	if dryRun {
		sink = memory.New()
		scoreRepo = sink.ScoreRepository()
	}
	weightRepo := postgres.NewWeightRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	privacyRepo := postgres.NewPrivacyRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)
	choiceRepo := postgres.NewMatchChoiceRepository(db)
	resultRepo := postgres.NewMatchResultRepository(db)

	// Initialize use cases
	weightsUseCase := weights.NewWeightsUseCase(weightRepo, scoreRepo, cfg.Matching.DefaultWeights, log)

	m := cfg.Matching
	compatibilityUseCase := compatibility.NewCompatibilityUseCase(
		profileRepo,
		assessmentRepo,
		dealbreakerRepo,
		ratingRepo,
		tasteRepo,
		scoreRepo,
		weightsUseCase,
		nil,
		compatibility.Options{
			PoolLimit:          m.PoolLimit,
			ChunkSize:          m.ChunkSize,
			ChunkRetryAttempts: m.ChunkRetryAttempts,
			ChunkRetryBackoff:  m.ChunkRetryBackoff,
			Parallelism:        m.Parallelism,
		},
		log,
	)

	learnerUseCase := taste.NewLearnerUseCase(ratingRepo, profileRepo, assessmentRepo, tasteRepo, scoreRepo, log)
	ratingUseCase := rating.NewRatingUseCase(eventRepo, ratingRepo, scoreRepo, log)
	choiceUseCase := matchchoice.NewMatchChoiceUseCase(eventRepo, choiceRepo, resultRepo, privacyRepo, subscriptionRepo, log)
	tokenUseCase := auth.NewTokenUseCase(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiryMin)

	return &Container{
		Config: cfg,
		Log:    log,
		DB:     db,
		DryRun: sink,
		UseCases: &UseCases{
			Compatibility: compatibilityUseCase,
			Learner:       learnerUseCase,
			Weights:       weightsUseCase,
			Rating:        ratingUseCase,
			MatchChoice:   choiceUseCase,
			Tokens:        tokenUseCase,
		},
	}, nil
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Gemini != nil {
		c.Gemini.Close()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn("Error closing redis", "error", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
