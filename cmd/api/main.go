package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/daniswara/kumpul-api/internal/config"
	"github.com/daniswara/kumpul-api/internal/database"
	"github.com/daniswara/kumpul-api/internal/handler"
	"github.com/daniswara/kumpul-api/internal/middleware"
	"github.com/daniswara/kumpul-api/internal/models"
	"github.com/daniswara/kumpul-api/internal/repository"
	"github.com/daniswara/kumpul-api/internal/router"
	"github.com/daniswara/kumpul-api/internal/service"
	cloud "github.com/daniswara/kumpul-api/pkg/cloudinary"
	"github.com/daniswara/kumpul-api/pkg/moderation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.Chat{},
		&models.ChatParticipant{},
		&models.Message{},
		&models.Notification{},
		&models.Post{},
		&models.Reaction{},
		&models.Comment{},
		&models.MarketplaceItem{},
		&models.Report{},
		&models.AdminAction{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var screener moderation.Screener
	if cfg.OpenAIAPIKey != "" {
		screener, err = moderation.NewOpenAIScreener(moderation.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create content screener: %v", err)
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	postRepo := repository.NewPostRepository(db)
	marketplaceRepo := repository.NewMarketplaceRepository(db)
	reportRepo := repository.NewReportRepository(db)
	analyticsRepo := repository.NewAdminAnalyticsRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, userRepo, redisClient, cfg.ChannelBase, natsConn, validate, logger)
	userService := service.NewUserService(userRepo, validate, cfg.JWTSecret, logger)
	friendshipService := service.NewFriendshipService(friendshipRepo, userRepo, notificationService, logger)
	chatService := service.NewChatService(chatRepo, messageRepo, userRepo, notificationService, redisClient, cfg.ChannelBase, natsConn, validate, logger)
	postService := service.NewPostService(postRepo, userRepo, notificationService, validate, logger)
	marketplaceService := service.NewMarketplaceService(marketplaceRepo, validate, logger)
	moderationService := service.NewModerationService(reportRepo, userRepo, notificationService, screener, validate, logger)
	analyticsService := service.NewAdminAnalyticsService(analyticsRepo, redisClient, cfg.DashboardCacheTTL, logger)
	mediaService := service.NewMediaService(uploader, cfg.UploadMaxSizeMB, logger)

	runCtx, stopSubscribers := context.WithCancel(context.Background())
	defer stopSubscribers()
	notificationService.Start(runCtx)
	chatService.Start(runCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(userService, logger),
		UserHandler:         handler.NewUserHandler(userService, logger),
		FriendshipHandler:   handler.NewFriendshipHandler(friendshipService, logger),
		ChatHandler:         handler.NewChatHandler(chatService, logger),
		NotificationHandler: handler.NewNotificationHandler(notificationService, logger, 30*time.Second),
		PostHandler:         handler.NewPostHandler(postService, logger),
		MarketplaceHandler:  handler.NewMarketplaceHandler(marketplaceService, logger),
		ModerationHandler:   handler.NewModerationHandler(moderationService, logger),
		AdminHandler:        handler.NewAdminHandler(analyticsService, userService, moderationService, logger),
		UploadHandler:       handler.NewUploadHandler(mediaService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		HealthProbes: []handler.HealthProbe{
			{Name: "postgres", Check: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}},
			{Name: "redis", Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}},
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
