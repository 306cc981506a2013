package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/docchat/internal/ai"
	"github.com/xxxsen/docchat/internal/config"
	"github.com/xxxsen/docchat/internal/filestore"
	"github.com/xxxsen/docchat/internal/handler"
	"github.com/xxxsen/docchat/internal/job"
	"github.com/xxxsen/docchat/internal/kb"
	"github.com/xxxsen/docchat/internal/middleware"
	"github.com/xxxsen/docchat/internal/rag"
	"github.com/xxxsen/docchat/internal/repo"
	"github.com/xxxsen/docchat/internal/schedule"
	"github.com/xxxsen/docchat/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docchat",
		Short: "docchat backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run docchat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
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

			db, err := repo.Open(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db, cfg.MigrationsDir); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, db *sql.DB) error {
	ctx := context.Background()
	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_driver", cfg.DB.Driver),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("ai_provider", cfg.AI.Provider),
	)

	sessionRepo := repo.NewSessionRepo(db, cfg.DB.Driver)
	turnRepo := repo.NewTurnRepo(db, cfg.DB.Driver)

	store := kb.NewStore()
	files, err := filestore.New(cfg.FileStore.Type, cfg.FileStore.Data)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	documentService := service.NewDocumentService(store, files, cfg.LocalDir())
	if err := documentService.Rebuild(ctx); err != nil {
		logutil.GetLogger(ctx).Warn("initial knowledge base rebuild failed", zap.Error(err))
	}
	logutil.GetLogger(ctx).Info("knowledge base ready", zap.Int("documents", store.Len()))

	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	manager := ai.NewManager(provider, cfg.AI.Model, ai.ManagerConfig{
		Timeout:         cfg.AI.Timeout,
		MaxOutputTokens: cfg.AI.MaxOutputTokens,
	})
	engine := rag.NewEngine(store, manager)

	stats := service.NewLatencyStats(time.Hour)
	chatService := service.NewChatService(engine, sessionRepo, turnRepo, stats)
	reportService := service.NewReportService(turnRepo, store, stats)

	deps := handler.RouterDeps{
		Chat:      handler.NewChatHandler(chatService),
		Documents: handler.NewDocumentHandler(documentService),
		Providers: handler.NewProviderHandler(manager),
		Reports:   handler.NewReportHandler(reportService),
	}

	web, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			middleware.RequestID(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	sched := schedule.NewCronScheduler()
	if err := sched.AddJob(job.NewKBRescanJob(documentService), cfg.Chat.RescanCron); err != nil {
		return fmt.Errorf("schedule kb rescan: %w", err)
	}
	retention := time.Duration(cfg.Chat.TurnRetentionDays) * 24 * time.Hour
	if err := sched.AddJob(job.NewTurnPruneJob(turnRepo, retention), "30 3 * * *"); err != nil {
		return fmt.Errorf("schedule turn prune: %w", err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched.Start(runCtx)
	defer sched.Stop()

	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := web.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(ctx).Error("server error", zap.Error(err))
		}
	}()

	<-runCtx.Done()
	logutil.GetLogger(ctx).Info("server stopping...")
	return nil
}
