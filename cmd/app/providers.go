package main

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/karenlo/mapchat/internal/domain/assistant"
	"github.com/karenlo/mapchat/internal/infra/config"
	"github.com/karenlo/mapchat/internal/infra/convstore"
	"github.com/karenlo/mapchat/internal/infra/llm/chatgpt"
	"github.com/karenlo/mapchat/internal/infra/querylog"
)

func provideAssistantConfig(cfg *config.Config) assistant.Config {
	return assistant.Config{
		Model:          cfg.LLM.Model,
		Temperature:    cfg.LLM.Temperature,
		RequestTimeout: cfg.LLM.RequestTimeout,
		MaxResults:     cfg.Assistant.MaxResults,
		ContextTurns:   cfg.Assistant.ContextTurns,
		City:           cfg.Assistant.City,
	}
}

func provideChatClient(cfg *config.Config) (*chatgpt.Client, error) {
	return chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

func provideChatClientInterface(client *chatgpt.Client) assistant.ChatClient {
	return client
}

// provideRand seeds the synthesizer's randomness. A fixed seed from config
// reproduces a run exactly; otherwise the wall clock seeds it.
func provideRand(cfg *config.Config) *rand.Rand {
	seed := cfg.Assistant.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func provideConversationStore(cfg *config.Config, logger *slog.Logger) assistant.ConversationStore {
	if cfg.Conversation.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return convstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return convstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("conversation valkey store enabled", "addr", cfg.Conversation.Valkey.Addr)
			return convstore.NewValkeyStore(client, "conv", cfg.Conversation.Valkey.TTL)
		}
	}
	return convstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Conversation.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Conversation.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Conversation.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideQueryLogRepository(cfg *config.Config, logger *slog.Logger) assistant.QueryLogRepository {
	fallback := querylog.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.QueryLog.Postgres.DSN)
	if dsn == "" {
		logger.Info("query log postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.QueryLog.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.QueryLog.Postgres.MaxConns
	}
	if cfg.QueryLog.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.QueryLog.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("query log postgres repository enabled")
	return querylog.NewPostgresRepository(pool)
}
