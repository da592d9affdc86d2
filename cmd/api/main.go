package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"chatsync/internal/config"
	"chatsync/internal/engine"
	"chatsync/internal/events"
	"chatsync/internal/handler"
	"chatsync/internal/middleware"
	"chatsync/internal/presence"
	"chatsync/internal/redis"
	"chatsync/internal/repository"
	"chatsync/internal/services"
	"chatsync/internal/storage"
	"chatsync/internal/typing"
	"chatsync/internal/websocket"
	"chatsync/pkg/database"
	"chatsync/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Server.Environment)
	logger.SetGlobalLogger(log)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Errorf("connecting to database: %v", err)
		return
	}
	if err := database.Migrate(db); err != nil {
		log.Errorf("migrating database: %v", err)
		return
	}

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	publisher := redis.NewPublisher(redisClient)
	subscriber := redis.NewSubscriber(redisClient)
	mirror := redis.NewPresenceStore(redisClient)
	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())

	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	userRepo := repository.NewUserRepository(db)

	bcast := events.NewRedisBroadcaster(publisher, log)
	eng := engine.New(conversationRepo, messageRepo, bcast, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	bridge := websocket.NewRedisBridge(subscriber, hub)
	go runBridge(ctx, bridge, log)

	registry := presence.NewRegistry()
	tracker := typing.NewTracker(cfg.Sync.TypingExpiry, func(e typing.Event) {
		bcast.ToConversation(context.Background(), e.ConversationID, events.EventTypeTypingChanged, events.TypingPayload{
			ConversationID: e.ConversationID,
			UserID:         e.UserID,
			DisplayName:    e.DisplayName,
			IsTyping:       e.Typing,
		})
	})

	authService := services.NewAuthService(userRepo, cfg)
	conversationService := services.NewConversationService(conversationRepo)

	var s3Client *storage.Client
	if cfg.S3.Bucket != "" {
		s3Client, err = storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3.Region,
			Bucket:     cfg.S3.Bucket,
			AccessKey:  cfg.S3.AccessKey,
			SecretKey:  cfg.S3.SecretKey,
			Endpoint:   cfg.S3.Endpoint,
			PublicBase: cfg.S3.PublicBase,
			PresignTTL: cfg.S3.PresignTTL,
		})
		if err != nil {
			log.Warnf("s3 disabled: %v", err)
			s3Client = nil
		}
	}
	uploadService := services.NewUploadService(s3Client)

	wsHandler := websocket.NewHandler(authService, hub, eng, registry, tracker, conversationRepo, bcast, mirror, log)
	authHandler := handler.NewAuthHandler(authService)
	conversationHandler := handler.NewConversationHandler(conversationService, eng)
	messageHandler := handler.NewMessageHandler(conversationService, messageRepo, eng)
	uploadHandler := handler.NewUploadHandler(uploadService)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware(log))
	r.Use(middleware.ErrorHandler(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", wsHandler.Connect)

	api := r.Group("/api")
	api.POST("/auth/login", middleware.AuthRateLimitMiddleware(limiter), authHandler.Login)

	authed := api.Group("", middleware.AuthMiddleware(authService))
	{
		authed.GET("/conversations", conversationHandler.List)
		authed.POST("/conversations/groups", conversationHandler.CreateGroup)
		authed.POST("/conversations/direct", conversationHandler.CreateDirect)
		authed.GET("/conversations/:id/messages", messageHandler.History)
		authed.POST("/conversations/:id/messages", middleware.MessageRateLimitMiddleware(limiter), messageHandler.Send)
		authed.DELETE("/conversations/:id/messages/:messageID", messageHandler.Delete)
		authed.POST("/conversations/:id/read", messageHandler.MarkRead)
		authed.PATCH("/messages/:messageID", messageHandler.Edit)
		authed.POST("/uploads/presign", uploadHandler.Presign)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
	_ = redisClient.Close()
}

// runBridge keeps the redis subscription alive, reconnecting with a short
// backoff after transient failures.
func runBridge(ctx context.Context, bridge *websocket.RedisBridge, log *logger.Logger) {
	for {
		err := bridge.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		log.Errorf("redis bridge: %v", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}
