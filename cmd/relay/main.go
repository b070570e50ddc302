package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"chatfuse/internal/config"
	"chatfuse/internal/infrastructure"
	"chatfuse/internal/logging"
	"chatfuse/internal/repository"
	"chatfuse/internal/usecases"

	apihttp "chatfuse/internal/interfaces/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup(cfg.Mode, cfg.LogFile)
	defer logger.Sync()

	pgClient, err := infrastructure.NewPostgresClient(cfg.DatabaseURL())
	if err != nil {
		zap.S().Fatalf("failed to connect to database: %v", err)
	}
	defer pgClient.Close()

	connRepo := repository.NewConnectionRepository(pgClient.Pool)
	provider := infrastructure.NewEvolutionClient(cfg.EvolutionURL, cfg.EvolutionAPIKey, cfg.RelayPublicURL+"/queue")

	mediaStore, err := infrastructure.NewMediaStore(cfg.TempDir, infrastructure.DefaultRetention)
	if err != nil {
		zap.S().Fatalf("failed to prepare temp dir: %v", err)
	}
	defer mediaStore.Close()

	// Sweep catches staged files whose expiry timers died with a previous
	// process.
	sched := cron.New()
	if _, err := sched.AddFunc("@every 30m", mediaStore.Sweep); err != nil {
		zap.S().Fatalf("failed to schedule media sweep: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	forwarder := infrastructure.NewWebhookForwarder()
	relayUsecase := usecases.NewRelayUsecase(connRepo, provider, mediaStore, forwarder)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	apihttp.SetupRelayRoutes(r, relayUsecase, mediaStore)

	srv := &http.Server{
		Addr:    ":" + cfg.RelayPort,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zap.S().Infof("relay listening on port %s", cfg.RelayPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalf("relay server failed: %v", err)
		}
	}()

	<-ctx.Done()
	zap.S().Info("shutting down relay")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorf("relay shutdown: %v", err)
	}
}
