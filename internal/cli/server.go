package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"daily-trivia-service/internal/answer"
	"daily-trivia-service/internal/app"
	"daily-trivia-service/internal/calendar"
	"daily-trivia-service/internal/config"
	"daily-trivia-service/internal/infra/judge"
	"daily-trivia-service/internal/infra/memory"
	pgstore "daily-trivia-service/internal/infra/postgres"
	redisstore "daily-trivia-service/internal/infra/redis"
	"daily-trivia-service/internal/metrics"
	"daily-trivia-service/internal/progress"
	transport "daily-trivia-service/internal/transport/http"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	configureLogging(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	cal, err := calendar.New(cfg.Questions.TimeZone)
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		ping := func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		if err := waitFor(ctx, "redis", ping); err != nil {
			return err
		}
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	loader, err := questionLoader(cfg, pool)
	if err != nil {
		return err
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var questionRepo app.QuestionRepository
	if redisClient != nil {
		questionRepo = redisstore.NewQuestionCache(redisClient, loader, questionTTL)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, questionTTL)
	}

	var playerStore progress.Store
	switch {
	case pool != nil:
		playerStore = pgstore.NewPlayerStore(pool)
	case redisClient != nil:
		playerStore = redisstore.NewPlayerStore(redisClient)
	default:
		logrus.Warn("no durable store configured, player records live in memory")
		playerStore = memory.NewPlayerStore()
	}

	var controllers app.ControllerRepository
	if redisClient != nil {
		controllers = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		controllers = memory.NewSessionStore()
	}

	judgeClient := judge.NewClient(judge.Config{
		APIKey:  cfg.Judge.APIKey,
		Model:   cfg.Judge.Model,
		BaseURL: cfg.Judge.BaseURL,
		Timeout: config.TTLDuration(cfg.Judge.Timeout, 10*time.Second),
	})
	if !judgeClient.Configured() {
		logrus.Warn("judge api key not configured, the ai tier will report ai-error")
	}
	matcher, err := answer.NewMatcherFromNames(cfg.Matcher.Tiers, judgeClient)
	if err != nil {
		return err
	}
	logrus.Infof("matcher tiers: %v", matcher.Tiers())

	questions := app.NewQuestionService(questionRepo, cal)
	switch strings.ToLower(cfg.Questions.Variant) {
	case "single":
		questions.WithLimit(1)
	case "multi":
		questions.WithLimit(3)
	}

	m := metrics.New()
	service := app.NewGameService(
		controllers,
		questions,
		m.InstrumentMatcher(matcher),
		progress.NewRepository(playerStore, cal),
		app.WithRules(app.Rules{
			TimerSeconds:     cfg.Game.TimerSeconds,
			SingleWagerFloor: cfg.Game.SingleWagerFloor,
		}),
		app.WithCommitHook(m.ObserveCommit),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, m.Handler()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logrus.Infof("starting trivia service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logrus.Info("shutting down server...")
	case <-ctx.Done():
		logrus.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// questionLoader prefers postgres, then a questions file.
func questionLoader(cfg config.Config, pool *pgxpool.Pool) (memory.QuestionLoader, error) {
	if pool != nil {
		return pgstore.NewQuestionLoader(pool), nil
	}
	if cfg.Questions.File == "" {
		return nil, fmt.Errorf("no question source configured: set postgres.url or questions.file")
	}
	return memory.LoadQuestionFile(cfg.Questions.File)
}

func configureLogging(cfg config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// waitFor retries a readiness check with exponential backoff.
func waitFor(ctx context.Context, name string, check func(context.Context) error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	err := backoff.Retry(func() error {
		if err := check(ctx); err != nil {
			logrus.Warnf("%s connection failed: %v, retrying...", name, err)
			return err
		}
		return nil
	}, policy)
	if err != nil {
		return fmt.Errorf("connect %s: %w", name, err)
	}
	return nil
}
