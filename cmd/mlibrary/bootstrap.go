package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mlibrary/internal/ai"
	"github.com/xxxsen/mlibrary/internal/config"
	"github.com/xxxsen/mlibrary/internal/db"
	"github.com/xxxsen/mlibrary/internal/embedcache"
	"github.com/xxxsen/mlibrary/internal/metadata"
	"github.com/xxxsen/mlibrary/internal/repo"
	"github.com/xxxsen/mlibrary/internal/service"
)

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	// .env is optional
	_ = godotenv.Load()
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	return cfg, nil
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return conn, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func newResolver(ctx context.Context, cfg *config.Config) (*metadata.Resolver, error) {
	gb := cfg.Metadata.GoogleBooks
	google, err := metadata.NewGoogleBooksClient(ctx, metadata.GoogleBooksConfig{
		Enabled:  gb.IsEnabled(),
		APIKey:   gb.APIKey,
		Endpoint: gb.Endpoint,
		Timeout:  seconds(gb.Timeout),
	})
	if err != nil {
		return nil, err
	}
	ol := cfg.Metadata.OpenLibrary
	openLibrary := metadata.NewOpenLibraryClient(metadata.OpenLibraryConfig{
		Enabled:       ol.IsEnabled(),
		BaseURL:       ol.BaseURL,
		Timeout:       seconds(ol.Timeout),
		AuthorTimeout: seconds(ol.AuthorTimeout),
	})
	resolver := metadata.NewResolver(google, openLibrary)
	for _, src := range resolver.Sources() {
		logutil.GetLogger(ctx).Info("metadata source", zap.String("source", src.Name()), zap.Bool("enabled", src.Enabled()))
	}
	return resolver, nil
}

type services struct {
	books     *service.BookService
	search    *service.SearchService
	recommend *service.RecommendService
	embedRepo *repo.EmbeddingCacheRepo
}

func newServices(ctx context.Context, cfg *config.Config, conn *sql.DB) (*services, error) {
	resolver, err := newResolver(ctx, cfg)
	if err != nil {
		return nil, err
	}
	embedder, err := ai.NewEmbedderFromConfig(cfg.AI)
	if err != nil {
		return nil, err
	}
	bookRepo := repo.NewBookRepo(conn)
	embedRepo := repo.NewEmbeddingCacheRepo(conn)
	cache := embedcache.New(embedder, embedRepo)
	queryEmbedder := embedcache.WrapQueryCache(embedder, cfg.AI.QueryCacheSize, seconds(cfg.AI.QueryCacheTTL))

	logutil.GetLogger(ctx).Info("embedding provider ready",
		zap.String("provider", cfg.AI.Provider),
		zap.Bool("enabled", cache.Enabled()),
		zap.String("model", cache.ModelName()))

	return &services{
		books: service.NewBookService(bookRepo, repo.NewAuthorRepo(conn), resolver),
		search: service.NewSearchService(
			bookRepo,
			repo.NewNoteRepo(conn),
			repo.NewReviewRepo(conn),
			repo.NewBookFileRepo(conn),
			cache,
			queryEmbedder,
			service.SearchServiceConfig{Provider: cfg.AI.Provider, DefaultTopK: cfg.Search.DefaultTopK},
		),
		recommend: service.NewRecommendService(repo.NewLibraryBookRepo(conn), cfg.Search.RecommendLimit),
		embedRepo: embedRepo,
	}, nil
}
