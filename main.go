package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/nyat/backend/internal/config"
	"github.com/nyat/backend/internal/db"
	"github.com/nyat/backend/internal/handler"
	"github.com/nyat/backend/internal/observability"
	"github.com/nyat/backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		slog.Error("postgres init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	repo := db.NewPostgres(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		slog.Error("schema bootstrap failed", slog.Any("error", err))
		os.Exit(1)
	}

	hasher := service.NewPasswordHasher(0)

	authService, err := service.NewAuthService(repo, hasher, cfg.Token)
	if err != nil {
		slog.Error("auth service init failed", slog.Any("error", err))
		os.Exit(1)
	}
	chatService := service.NewChatService(repo, repo)

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)

	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestLogger(), observability.HTTPMetricsMiddleware())

	router.GET("/health", handler.Ping)
	router.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	router.POST("/user/register", authHandler.Register)
	router.POST("/user/login", authHandler.Login)

	chat := router.Group("/chat")
	chat.Use(handler.AuthMiddleware(authService))
	chat.POST("/pm", chatHandler.CreatePM)

	slog.Info("starting server", slog.String("addr", cfg.HTTP.Addr))
	if err := router.Run(cfg.HTTP.Addr); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
