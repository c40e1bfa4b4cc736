package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof" // Register pprof handlers
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NDKhanh96/linker-chat-be-sub000/internal/config"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/middleware"
	attachmentHttp "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/attachment/adapter/http"
	attachmentLocal "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/attachment/adapter/local"
	attachmentDomain "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/attachment/domain"
	attachmentRepo "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/attachment/repository"
	attachmentUseCase "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/attachment/usecase"
	conversationHttp "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/adapter/http"
	conversationLocal "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/adapter/local"
	conversationDomain "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/domain"
	conversationRepo "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/repository"
	conversationUseCase "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/conversation/usecase"
	gatewayHttp "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/gateway/adapter/http"
	gatewayRedis "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/gateway/repository/redis"
	gatewayUseCase "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/gateway/usecase"
	"github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/gateway/ws"
	messageHttp "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/adapter/http"
	messageLocal "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/adapter/local"
	messageDomain "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/domain"
	messageRepo "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/repository"
	messageUseCase "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/message/usecase"
	userHttp "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/user/adapter/http"
	userLocal "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/user/adapter/local"
	userDomain "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/user/domain"
	userRepo "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/user/repository"
	userUseCase "github.com/NDKhanh96/linker-chat-be-sub000/internal/modules/user/usecase"
	"github.com/NDKhanh96/linker-chat-be-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	pprofPort := flag.String("pprof-port", "", "Port to run pprof server on (e.g., 6060)")
	background := flag.Bool("d", false, "Run in background mode (disable console logging)")
	flag.Parse()

	cfg := config.LoadChatConfig()

	logger.InitWithFile(cfg.Server.LogFile, cfg.Server.LogLevel, "json", !*background)
	defer logger.Flush()

	if *pprofPort != "" {
		go func() {
			addr := "localhost:" + *pprofPort
			logger.InfoGlobal().Str("addr", addr).Msg("Starting pprof server")
			if err := http.ListenAndServe(addr, nil); err != nil {
				logger.ErrorGlobal().Err(err).Msg("Failed to start pprof server")
			}
		}()
	}

	logger.InfoGlobal().Msg("Starting chat backend...")

	// Infrastructure
	dbConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)

	db, err := gorm.Open(postgres.Open(dbConnStr), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to get database instance")
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to ping database")
	}

	if err := db.AutoMigrate(
		&userDomain.User{},
		&userDomain.Session{},
		&conversationDomain.Conversation{},
		&conversationDomain.Member{},
		&messageDomain.Message{},
		&attachmentDomain.Attachment{},
	); err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to migrate database")
	}
	logger.InfoGlobal().Msg("Database connected")

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
	})
	defer rdb.Close()
	logger.InfoGlobal().Msg("Redis connected")

	// User module
	userRepository := userRepo.NewUserRepository(db)
	sessionRepository := userRepo.NewSessionRepository(db)
	userUC := userUseCase.NewUserUseCase(userRepository, sessionRepository, cfg.JWT.Secret, cfg.JWT.Duration)
	userSvc := userLocal.NewHandler(userUC)
	logger.InfoGlobal().Msg("User module initialized")

	// Conversation module
	conversationRepository := conversationRepo.NewConversationRepository(db)
	conversationUC := conversationUseCase.NewConversationUseCase(conversationRepository)
	conversationSvc := conversationLocal.NewHandler(conversationUC)
	logger.InfoGlobal().Msg("Conversation module initialized")

	// Attachment module
	attachmentRepository := attachmentRepo.NewAttachmentRepository(db)
	attachmentUC := attachmentUseCase.NewAttachmentUseCase(attachmentRepository, cfg.Attachment.Dir, cfg.Attachment.MaxSizeBytes)
	attachmentSvc := attachmentLocal.NewHandler(attachmentUC)
	logger.InfoGlobal().Msg("Attachment module initialized")

	// Message module
	messageRepository := messageRepo.NewMessageRepository(db)
	messageUC := messageUseCase.NewMessageUseCase(messageRepository, conversationSvc, userSvc, attachmentSvc)
	messageSvc := messageLocal.NewHandler(messageUC)
	logger.InfoGlobal().Msg("Message module initialized")

	// Gateway module
	wsManager := ws.NewManager(cfg.WebSocket)
	presenceStore := gatewayRedis.NewPresenceStore(rdb, cfg.Gateway.PresenceTTL)
	gatewayUC := gatewayUseCase.NewGatewayUseCase(wsManager, userSvc, conversationSvc, messageSvc, presenceStore, cfg.Gateway)
	gatewayHandler := gatewayHttp.NewHandler(gatewayUC, wsManager, userSvc)
	logger.InfoGlobal().Msg("Gateway module initialized")

	// HTTP handlers
	userHandler := userHttp.NewHandler(userUC, presenceStore)
	conversationHandler := conversationHttp.NewHandler(conversationUC)
	messageHandler := messageHttp.NewHandler(messageUC)
	attachmentHandler := attachmentHttp.NewHandler(attachmentUC)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware())

	api := router.Group("/api")
	{
		userHandler.RegisterAuthRoutes(api.Group("/auth"))

		authed := api.Group("")
		authed.Use(middleware.RequireAuth(userSvc))
		{
			userHandler.RegisterUserRoutes(authed.Group("/users"))

			conversations := authed.Group("/conversations")
			conversationHandler.RegisterRoutes(conversations)
			messageHandler.RegisterRoutes(conversations, authed.Group("/messages"))

			attachmentHandler.RegisterRoutes(authed.Group("/attachments"))
		}
	}

	router.GET("/ws", func(c *gin.Context) {
		gatewayHandler.HandleWebSocket(c.Writer, c.Request)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	logger.InfoGlobal().
		Str("port", cfg.Server.Port).
		Str("ws_url", fmt.Sprintf("ws://localhost:%s/ws?token=YOUR_TOKEN", cfg.Server.Port)).
		Str("api_url", fmt.Sprintf("http://localhost:%s/api", cfg.Server.Port)).
		Msg("Chat backend running")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalGlobal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown: stop accepting requests first, then drop sockets
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoGlobal().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorGlobal().Err(err).Msg("HTTP server forced to shutdown")
	}

	logger.InfoGlobal().Msg("Closing all WebSocket connections...")
	wsManager.Shutdown()

	logger.InfoGlobal().Msg("Server exited properly")
}
