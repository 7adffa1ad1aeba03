package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/mlibrary/internal/config"
	"github.com/xxxsen/mlibrary/internal/handler"
	"github.com/xxxsen/mlibrary/internal/job"
	"github.com/xxxsen/mlibrary/internal/middleware"
	"github.com/xxxsen/mlibrary/internal/schedule"
)

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "run the http server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := logutil.GetLogger(ctx)

	conn, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	svcs, err := newServices(ctx, cfg, conn)
	if err != nil {
		return err
	}

	if spec := cfg.Jobs.EmbeddingBackfillSpec; spec != "" {
		if svcs.search.Status().Enabled {
			scheduler := schedule.NewCronScheduler()
			if err := scheduler.AddJob(job.NewEmbeddingBackfillJob(svcs.search), spec); err != nil {
				return fmt.Errorf("schedule embedding backfill: %w", err)
			}
			scheduler.Start(ctx)
			defer scheduler.Stop()
		} else {
			logger.Warn("embedding backfill job ignored: embeddings disabled", zap.String("spec", spec))
		}
	}

	deps := handler.RouterDeps{
		Books:             handler.NewBookHandler(svcs.books),
		Search:            handler.NewSearchHandler(svcs.search, svcs.recommend),
		SemanticRateLimit: time.Duration(cfg.Search.SemanticRateLimitMs) * time.Millisecond,
	}
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logger.Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("server stopping...")
	return nil
}
