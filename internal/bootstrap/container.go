package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-booktutor-be/internal/config"
	"ai-booktutor-be/internal/controller"
	"ai-booktutor-be/internal/pkg/logger"
	"ai-booktutor-be/internal/pkg/mailer"
	"ai-booktutor-be/internal/repository/memory"
	"ai-booktutor-be/internal/repository/unitofwork"
	"ai-booktutor-be/internal/service"
	"ai-booktutor-be/internal/websocket"
	"ai-booktutor-be/pkg/generation"

	pktNats "ai-booktutor-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	UserController controller.IUserController
	BookController controller.IBookController
	ChatController controller.IChatController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub

	// Shared
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	genClient := generation.NewClient(
		cfg.Generation.BaseURL,
		time.Duration(cfg.Generation.TimeoutSeconds)*time.Second,
	)

	// WebSocket hub with its own log file
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Topics.EmbedBook, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Topics.EmbedBook,
		uowFactory,
		genClient,
		natsPub,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory, emailService, natsPub, sysLogger)
	userService := service.NewUserService(uowFactory)
	bookService := service.NewBookService(uowFactory, publisherService, cfg.App.UploadDir, sysLogger)

	conversationLocks := memory.NewConversationLocks()
	chatService := service.NewChatService(uowFactory, genClient, conversationLocks, wsHub, sysLogger)
	chatHistoryService := service.NewChatHistoryService(uowFactory)

	// 4. Controllers
	return &Container{
		AuthController: controller.NewAuthController(authService),
		UserController: controller.NewUserController(userService),
		BookController: controller.NewBookController(bookService),
		ChatController: controller.NewChatController(chatService, chatHistoryService),

		ConsumerService: consumerService,
		WebSocketHub:    wsHub,
		Logger:          sysLogger,
	}
}
