package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quizzer/internal/app"
	"quizzer/internal/config"
	"quizzer/internal/domain"
	"quizzer/internal/infra/backend"
	"quizzer/internal/infra/memory"
	pglibrary "quizzer/internal/infra/postgres"
	rediscache "quizzer/internal/infra/redis"
	"quizzer/internal/infra/sqlite"
	"quizzer/internal/logging"
)

// runtime is the wired service graph of one command invocation.
type runtime struct {
	cfg     config.Config
	logger  *slog.Logger
	service *app.QuizService
	library *pglibrary.QuizLibrary
	catalog app.QuizRepository
	closers []func()
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

func loadRuntime(ctx context.Context, configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return newRuntime(ctx, cfg)
}

func newRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	rt := &runtime{cfg: cfg, logger: logger}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	store, err := sqlite.NewStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}
	rt.closers = append(rt.closers, func() { _ = store.Close() })

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)

	client := backend.NewClient(cfg.Backend.URL, config.TTLDuration(cfg.Backend.Timeout, 15*time.Second), logger)

	var (
		loader memory.QuizLoader = client
		writer app.QuizWriter    = client
	)
	switch cfg.Catalog.Source {
	case "backend":
	case "postgres":
		if cfg.Postgres.URL == "" {
			rt.Close()
			return nil, fmt.Errorf("catalog source postgres needs postgres.url")
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		rt.library = pglibrary.NewQuizLibrary(pool)
		loader, writer = rt.library, rt.library
	case "static":
		loader = memory.NewStaticQuizLoader(sampleQuizzes())
	default:
		rt.Close()
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 5*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = rediscache.NewQuizRepository(redisClient, loader, catalogTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, catalogTTL)
	}
	rt.catalog = quizRepo

	var active app.ActiveQuizStore = store.ActiveQuizzes()
	if redisClient != nil {
		active = rediscache.NewActiveQuizStore(redisClient, redisTTL)
	}

	rt.service = app.NewQuizService(app.Deps{
		Sessions: store,
		Active:   active,
		Quizzes:  quizRepo,
		Writer:   writer,
		Accounts: client,
		Scores:   client,
		Analytics: app.NewAnalytics(app.AnalyticsOptions{
			MaxScore:    cfg.Analytics.MaxScore,
			TrendWindow: cfg.Analytics.TrendWindow,
		}),
		Logger:      logger,
		SaveTimeout: config.TTLDuration(cfg.SaveTimeout, 10*time.Second),
	})
	logger.Debug("runtime ready", "catalog", cfg.Catalog.Source, "redis", redisClient != nil, "storage", cfg.Storage.Path)
	return rt, nil
}

// sampleQuizzes is the built-in demo catalog served by the static source.
func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:    "demo-arithmetic",
			Title: "Arithmetic Warm-up",
			Topic: "Math",
			Questions: []domain.Question{
				{Question: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, Answer: "4"},
				{Question: "What is 7 * 6?", Options: []string{"36", "42", "48", "56"}, Answer: "42"},
				{Question: "What is 81 / 9?", Options: []string{"7", "8", "9", "10"}, Answer: "9"},
			},
		},
		{
			ID:    "demo-go",
			Title: "Go Basics",
			Topic: "Programming",
			Questions: []domain.Question{
				{Question: "Which keyword starts a goroutine?", Options: []string{"go", "async", "spawn", "thread"}, Answer: "go"},
				{Question: "What is the zero value of a map?", Options: []string{"empty map", "nil", "0", "panic"}, Answer: "nil"},
			},
		},
	}
}
