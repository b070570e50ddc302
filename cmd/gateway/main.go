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
	"go.uber.org/zap"
)

func main() {
	// .env is optional; the environment wins either way
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup(cfg.Mode, cfg.LogFile)
	defer logger.Sync()

	pgClient, err := infrastructure.NewPostgresClient(cfg.DatabaseURL())
	if err != nil {
		zap.S().Fatalf("failed to connect to database: %v", err)
	}
	defer pgClient.Close()

	userRepo := repository.NewUserRepository(pgClient.Pool)
	connRepo := repository.NewConnectionRepository(pgClient.Pool)

	provider := infrastructure.NewEvolutionClient(cfg.EvolutionURL, cfg.EvolutionAPIKey, cfg.RelayPublicURL+"/queue")

	authUsecase := usecases.NewAuthUsecase(userRepo, cfg.JWTSecret)
	lifecycleUsecase := usecases.NewLifecycleUsecase(connRepo, provider)
	middleware := apihttp.NewMiddleware(cfg.JWTSecret)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	apihttp.SetupGatewayRoutes(r, authUsecase, lifecycleUsecase, connRepo, middleware, cfg.Production())

	srv := &http.Server{
		Addr:    ":" + cfg.GatewayPort,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zap.S().Infof("gateway listening on port %s", cfg.GatewayPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalf("gateway server failed: %v", err)
		}
	}()

	<-ctx.Done()
	zap.S().Info("shutting down gateway")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorf("gateway shutdown: %v", err)
	}
}
