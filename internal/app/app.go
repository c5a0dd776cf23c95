package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supportdesk_backend/internal/config"
	"supportdesk_backend/internal/handlers"
	"supportdesk_backend/internal/logger"
	"supportdesk_backend/internal/middleware"
	"supportdesk_backend/internal/models"
	"supportdesk_backend/internal/repositories"
	"supportdesk_backend/internal/routes"
	"supportdesk_backend/internal/services"
	"supportdesk_backend/internal/validator"
	"supportdesk_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := gormDB.AutoMigrate(&models.Message{}, &models.Notification{}); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	hub := ws.NewHub()
	ginRouter := SetupRouter(cfg, gormDB, hub)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    address,
		Handler: ginRouter,
	}

	go func() {
		logger.Info("Server starting", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	// Graceful shutdown: сперва HTTP, потом закрываем live-соединения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	hub.Shutdown()
	sqlDB.Close()
	logger.Info("Server stopped")
}

// SetupRouter собирает gin-роутер со всеми зависимостями.
// Hub передается снаружи, чтобы владелец процесса управлял его
// жизненным циклом (и чтобы тесты могли закрыть его за собой).
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, hub *ws.Hub) *gin.Engine {
	broadcaster := ws.NewBroadcaster(hub, cfg.Support.AdminEmail)

	serviceContainer := initializeServices(cfg, gormDB, broadcaster)
	appHandlers := initializeHandlers(serviceContainer)

	wsHandler := ws.NewWebSocketHandler(
		hub,
		cfg.Support.AdminEmail,
		cfg.WS.ReadBufferSize,
		cfg.WS.WriteBufferSize,
		cfg.WS.SendBufferSize,
	)

	ginRouter := initializeGinRouter(cfg)
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler)

	return ginRouter
}

func initializeServices(cfg *config.Config, gormDB *gorm.DB, broadcaster services.Broadcaster) *services.ServiceContainer {
	messageRepo := repositories.NewMessageRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)

	resolver := services.NewConversationResolver(cfg.Support.AdminEmail)

	chatService := services.NewChatService(messageRepo, resolver, broadcaster)
	notificationService := services.NewNotificationService(notificationRepo, broadcaster, cfg.Support.NotificationLimit)

	return &services.ServiceContainer{
		ChatService:         chatService,
		NotificationService: notificationService,
	}
}

func initializeHandlers(container *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		ChatHandler:         handlers.NewChatHandler(baseHandler, container.ChatService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, container.NotificationService),
	}
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	return router
}
