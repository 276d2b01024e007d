package bootstrap

import (
	"context"
	"log"

	"jobportal-be/internal/config"
	"jobportal-be/internal/controller"
	"jobportal-be/internal/handler"
	"jobportal-be/internal/pkg/logger"
	"jobportal-be/internal/pkg/mailer"
	"jobportal-be/internal/repository/memory"
	"jobportal-be/internal/repository/unitofwork"
	"jobportal-be/internal/service"
	"jobportal-be/internal/websocket"
	"jobportal-be/pkg/blobstore"
	"jobportal-be/pkg/treestore"

	pktNats "jobportal-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController        controller.IAuthController
	OAuthController       controller.IOAuthController
	UserController        controller.IUserController
	ApplicationController controller.IApplicationController
	CandidateController   controller.ICandidateController

	// Background Services (Exposed for main.go to run)
	SessionService service.ISessionService

	// WebSockets & Realtime
	RealtimeHandler *handler.RealtimeHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
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

	// Realtime tree over Redis
	tree := treestore.NewRedisStore(rdb)

	// Blob storage for avatars
	blobStore, err := blobstore.NewS3Store(context.Background(), blobstore.S3Config{
		Region:        cfg.S3.Region,
		Bucket:        cfg.S3.Bucket,
		Endpoint:      cfg.S3.Endpoint,
		AccessKey:     cfg.S3.AccessKey,
		SecretKey:     cfg.S3.SecretKey,
		PublicBaseURL: cfg.S3.PublicBaseURL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize blob storage: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/realtime.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Session projection registry
	sessionRegistry := memory.NewSessionRegistry(cfg.Session.TTL)

	// 3. Services
	identityPublisher := service.NewPublisherService(cfg.App.IdentityTopic, pubSub)

	profileService := service.NewProfileService(tree, natsPub)
	applicationService := service.NewApplicationService(uowFactory, tree, natsPub)
	authService := service.NewAuthService(uowFactory, emailService, identityPublisher, natsPub, profileService)
	oauthService := service.NewOAuthService(uowFactory, cfg.OAuth, identityPublisher, profileService)
	userService := service.NewUserService(uowFactory, blobStore, natsPub, identityPublisher, profileService)

	sessionService := service.NewSessionService(
		pubSub,
		cfg.App.IdentityTopic,
		sessionRegistry,
		applicationService,
		cfg.Session,
	)

	// 3.5 Realtime fan-out
	realtimeService := service.NewRealtimeService(natsSub, tree, wsHub, sysLogger)
	go realtimeService.Start()

	realtimeHandler := handler.NewRealtimeHandler(wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		RealtimeHandler:       realtimeHandler,
		WebSocketHub:          wsHub,
		AuthController:        controller.NewAuthController(authService, sessionRegistry),
		OAuthController:       controller.NewOAuthController(oauthService, cfg.App),
		UserController:        controller.NewUserController(userService, sessionRegistry),
		ApplicationController: controller.NewApplicationController(applicationService, sessionRegistry),
		CandidateController:   controller.NewCandidateController(profileService, sessionRegistry),

		SessionService: sessionService,
	}
}
