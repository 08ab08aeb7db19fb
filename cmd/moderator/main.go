package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/modguard/pipeline/pkg/config"
	handlers "github.com/modguard/pipeline/pkg/handlers/http"
	"github.com/modguard/pipeline/pkg/infra/httpx"
	infraLogger "github.com/modguard/pipeline/pkg/infra/logger"
	infraPrometheus "github.com/modguard/pipeline/pkg/infra/prometheus"
	"github.com/modguard/pipeline/pkg/moderation/blocklist"
	"github.com/modguard/pipeline/pkg/moderation/classifier"
	"github.com/modguard/pipeline/pkg/moderation/heuristic"
	"github.com/modguard/pipeline/pkg/moderation/pipeline"
	"github.com/modguard/pipeline/pkg/moderation/toxicity"
	"github.com/modguard/pipeline/pkg/server"
)

const breakerMaxFailures = 5

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load("config"); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()
	resolved := config.Resolve(cfg.Moderation)

	infraPrometheus.Initialize()

	store := buildBlocklistStore(logger, cfg)
	blocklistChecker := blocklist.NewChecker(logger, store)

	localChecker := heuristic.NewChecker(logger, heuristic.Config{
		BlockSocialHandles:     resolved.BlockSocialHandles,
		AllowNameIntroductions: resolved.AllowNameIntroductions,
	})

	httpClient := &http.Client{Timeout: resolved.Timeout + time.Second}

	classifierClient := classifier.NewHTTPClient(
		logger,
		httpClient,
		httpx.NewCircuitBreaker("classifier", resolved.Timeout, breakerMaxFailures),
		classifier.Config{
			Endpoint:   cfg.Moderation.Classifier.Endpoint,
			APIKey:     cfg.Moderation.Classifier.APIKey,
			Timeout:    resolved.Timeout,
			Thresholds: classifier.DefaultThresholds(resolved.HarassmentScoreThreshold),
		},
	)

	toxicityAnalyzer := toxicity.NewHTTPAnalyzer(logger, httpClient, toxicity.Config{
		BaseURL:   cfg.Moderation.Toxicity.Endpoint,
		Token:     cfg.Moderation.Toxicity.Token,
		Timeout:   resolved.Timeout,
		Threshold: resolved.ToxicityThreshold,
	})

	orchestrator := pipeline.New(
		logger,
		resolved,
		blocklistChecker,
		localChecker,
		classifierClient,
		toxicityAnalyzer,
	)

	handlerTransport := handlers.HandlerTransport{
		ModerateHandler:        handlers.NewModerateHandler(logger, orchestrator),
		QuickCheckHandler:      handlers.NewQuickCheckHandler(logger, orchestrator),
		StatusHandler:          handlers.NewStatusHandler(logger, orchestrator),
		ReloadBlocklistHandler: handlers.NewReloadBlocklistHandler(logger, blocklistChecker),
	}

	srv := server.NewModerationServer(server.ModerationServerDI{
		HandlerTransport: handlerTransport,
		Config:           cfg,
		Logger:           logger,
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		os.Exit(1)
	}
	fmt.Println("server gracefully stopped")
}

func buildBlocklistStore(logger *logrus.Logger, cfg *config.Config) blocklist.Store {
	switch cfg.Moderation.Blocklist.Source {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return blocklist.NewRedisStore(client, cfg.Moderation.Blocklist.RedisKey)
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.DBName,
			cfg.Database.SSLMode,
		)
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		return blocklist.NewPostgresStore(db)
	default:
		store, err := blocklist.NewMemoryStoreFromJSON(cfg.Moderation.Blocklist.Fallback)
		if err != nil {
			logger.WithError(err).Warn("invalid blocklist fallback, starting with an empty list")
			return blocklist.NewMemoryStore(nil)
		}
		return store
	}
}
