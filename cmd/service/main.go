package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tyrehub/config"
	"tyrehub/internal/agent"
	"tyrehub/internal/database"
	"tyrehub/internal/logger"
	"tyrehub/internal/migrate"
	"tyrehub/internal/repository"
	"tyrehub/internal/service"
	transport "tyrehub/internal/transport/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}
	defer logger.Sync()

	log := logger.L()

	if !isDev {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg := config.Load(log)

	db := database.Connect(&cfg.DB, log)
	defer database.Close(db, log)

	if err := migrate.Migrate(context.Background(), db, log, migrate.DefaultOptions()); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	repos := repository.New(db)

	catalogSvc := service.NewCatalogService(repos, log)
	inventorySvc := service.NewInventoryService(repos, service.DefaultStockPolicy(), log)
	orderSvc := service.NewOrderService(repos, inventorySvc, service.OrderOptions{}, log)

	var chatAgent service.Agent
	if cfg.Chat.GeminiAPIKey != "" {
		g, err := agent.NewGemini(context.Background(), cfg.Chat.GeminiAPIKey, cfg.Chat.GeminiModel, inventorySvc, log)
		if err != nil {
			log.Fatal("failed to create agent", zap.Error(err))
		}
		defer g.Close()
		chatAgent = g
	} else {
		log.Warn("GEMINI_API_KEY not set, chat runs in fallback mode")
	}
	chatSvc := service.NewChatService(repos, chatAgent, cfg.Chat.AgentTimeout, log)

	router := transport.NewRouter(&transport.Handlers{
		Catalog:   catalogSvc,
		Inventory: inventorySvc,
		Orders:    orderSvc,
		Chat:      chatSvc,
		Log:       log,
	})

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
	log.Info("http server stopped gracefully")
}
