package bootstrap

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"extractor_server/adapter/out/auth"
	"extractor_server/adapter/out/llm"
	"extractor_server/adapter/out/persistence"
	"extractor_server/adapter/out/provider"
	"extractor_server/adapter/out/realtime"
	"extractor_server/config"
	"extractor_server/core/port/in"
	"extractor_server/core/port/out"
	"extractor_server/core/service/calendar"
	"extractor_server/core/service/dataset"
	"extractor_server/core/service/extraction"
	"extractor_server/core/service/review"
	"extractor_server/pkg/apperr"
	"extractor_server/pkg/logger"
)

// Dependencies is the explicitly constructed application context. Service
// instances are wired here once and passed to handlers; nothing lives in
// package-level state.
type Dependencies struct {
	Config *config.Config

	// Storage
	Store out.KVStore

	// Outbound adapters
	TokenSource     *auth.StoredTokenSource
	RealtimeAdapter *realtime.SSEAdapter
	SSEHub          *realtime.SSEHub

	// Services
	ExtractionService in.ExtractionService
	CalendarService   in.CalendarService
	DatasetService    in.DatasetService
	ReviewService     in.ReviewService
}

// NewDependencies wires the full dependency graph. The returned cleanup
// closes resources in reverse creation order.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	log := logger.Default()
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	// KV store backing the dataset and the persisted Google token. Redis
	// and MongoDB implementations behave identically behind the port.
	store, err := newStore(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.Store = store
	cleanups = append(cleanups, func() { store.Close() })
	logger.Info("KV store initialized (backend: %s)", cfg.StorageBackend)

	// Realtime push (SSE)
	deps.RealtimeAdapter = realtime.NewSSEAdapter(zlog)
	deps.SSEHub = realtime.NewSSEHub(deps.RealtimeAdapter, zlog)

	// Google OAuth config used for calendar writes and token refresh
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/calendar.events",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
	deps.TokenSource = auth.NewStoredTokenSource(oauthConfig, store, log)

	// LLM adapter (Groq). A missing API key is not validated here; it
	// surfaces at call time and degrades to zero candidates.
	groq := llm.NewGroqAdapter(llm.Config{
		APIKey:      cfg.GroqAPIKey,
		BaseURL:     cfg.GroqBaseURL,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})

	// Calendar provider
	calendarProvider := provider.NewGoogleCalendarAdapter(oauthConfig)

	// Services
	deps.ExtractionService = extraction.NewService(groq, log)

	calendarService, err := calendar.NewService(calendarProvider, deps.TokenSource, cfg.CalendarID, cfg.CalendarTimezone, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.CalendarService = calendarService

	recorder := dataset.NewRecorder(store, dataset.Config{
		MaxEntries: cfg.DatasetMaxEntries,
		StorageKey: cfg.DatasetStorageKey,
	}, log)
	if err := recorder.Initialize(context.Background()); err != nil {
		logger.WithError(err).Warn("failed to load persisted dataset, starting empty")
	}
	deps.DatasetService = recorder

	deps.ReviewService = review.NewService(
		deps.CalendarService,
		deps.DatasetService,
		deps.RealtimeAdapter,
		deps.RealtimeAdapter,
		log,
	)

	return deps, cleanup, nil
}

// newStore picks the configured KV backend.
func newStore(cfg *config.Config) (out.KVStore, error) {
	switch cfg.StorageBackend {
	case "mongodb":
		if cfg.MongoDBURL == "" {
			return nil, apperr.ConfigError("MONGODB_URL is required for the mongodb backend")
		}
		client, err := persistence.NewMongoClient(cfg.MongoDBURL)
		if err != nil {
			return nil, err
		}
		return persistence.NewMongoStore(client, cfg.MongoDBName), nil

	case "redis":
		if cfg.RedisURL == "" {
			return nil, apperr.ConfigError("REDIS_URL is required for the redis backend")
		}
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, apperr.ConfigError("invalid REDIS_URL").WithError(err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(context.Background()).Err(); err != nil {
			client.Close()
			return nil, err
		}
		return persistence.NewRedisStore(client), nil

	default:
		return nil, apperr.ConfigError("unknown STORAGE_BACKEND: " + cfg.StorageBackend)
	}
}
