// Package app wires configuration into use case inputs and storage backends
// shared by the CLI and the API server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/user/edge-probe/internal/adapter/memory"
	"github.com/user/edge-probe/internal/adapter/postgres"
	redis_adapter "github.com/user/edge-probe/internal/adapter/redis"
	"github.com/user/edge-probe/internal/entity"
	"github.com/user/edge-probe/internal/repository"
	"github.com/user/edge-probe/internal/usecase"
	"github.com/user/edge-probe/pkg/config"
)

// LoadTarget resolves the endpoint and reads the questionnaire file.
func LoadTarget(cfg *config.Config) (usecase.Target, error) {
	endpoint, err := cfg.Endpoint()
	if err != nil {
		return usecase.Target{}, fmt.Errorf("resolve endpoint: %w", err)
	}
	content, err := os.ReadFile(cfg.QuestionnaireFile)
	if err != nil {
		return usecase.Target{}, fmt.Errorf("read questionnaire file: %w", err)
	}
	return usecase.Target{
		Endpoint:    endpoint,
		FileName:    cfg.QuestionnaireFile,
		FileContent: content,
		Options: entity.ImportOptions{
			CreateNewQuestionnaire: cfg.CreateNewQuestionnaire,
			MergeWithExisting:      cfg.MergeWithExisting,
			PreserveIDs:            cfg.PreserveIDs,
		},
		AccessToken:   cfg.AccessToken,
		BearerToken:   cfg.BearerToken(),
		APIKey:        cfg.BearerToken(),
		UserAgent:     cfg.UserAgent,
		UnauthTimeout: cfg.UnauthTimeout,
		AuthTimeout:   cfg.AuthTimeout,
		Cooldown:      cfg.Cooldown,
	}, nil
}

// Storage bundles the repositories a Diagnoser and RunHistory need.
type Storage struct {
	Runs     repository.RunRepository
	Failures repository.FailureRepository
	Cooldown repository.CooldownRepository
	History  repository.HistoryRepository

	closers []func()
}

// MemoryStorage keeps everything in process memory.
func MemoryStorage(historySize int) *Storage {
	runs := memory.NewRunStore(historySize)
	return &Storage{
		Runs:     runs,
		Failures: memory.NewFailureStore(),
		Cooldown: memory.NewCooldownStore(),
		History:  runs,
	}
}

// OpenStorage connects PostgreSQL when POSTGRES_URL is set and Redis when
// REDIS_ADDR is set; whatever is not configured stays in memory.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	s := MemoryStorage(cfg.HistorySize)

	if cfg.PostgresURL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, dbpool.Close)
		if err := dbpool.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
			s.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		s.Runs = postgres.NewRunRepo(dbpool)
		s.Failures = postgres.NewFailureRepo(dbpool)
		slog.Info("PostgreSQL connection pool established")
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		s.closers = append(s.closers, func() { _ = rdb.Close() })
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			s.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		s.Cooldown = redis_adapter.NewCooldownRepo(rdb)
		s.History = redis_adapter.NewHistoryRepo(rdb, cfg.HistorySize)
		slog.Info("Redis connection established")
	}

	return s, nil
}

// Close releases any open connections.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
