package router

import (
	"app/internal/api/v1/handler"
	"app/internal/config"
	"app/internal/event"
	"app/internal/middleware"
	"app/internal/pubsub"
	"app/internal/repository"
	"app/internal/service"
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Deps holds the long-lived resources the caller needs after the router is
// built: the pool for shutdown, the services for the scheduler.
type Deps struct {
	Pool          *pgxpool.Pool
	Courses       service.CourseService
	Notifications service.NotificationService
	Stats         service.StatsService
}

func New(cfg *config.Config, logger zerolog.Logger) (http.Handler, *Deps, error) {
	logger.Info().Str("environment", cfg.Environment).Msg("Router initializing")

	// 1. Open DB connection (connection pooling)
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL())
	if err != nil {
		logger.Error().Msgf("Failed to create DB pool: %v", err)
		return nil, nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		logger.Error().Msgf("Failed to ping DB: %v", err)
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	// 2. Optional Redis client for the popularity leaderboard
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping().Err(); err != nil {
			logger.Warn().Msgf("Redis unreachable, running without leaderboard cache: %v", err)
			redisClient = nil
		}
	}

	// 3. Initialize validator
	validate := validator.New(validator.WithRequiredStructEnabled())

	// 4. Optional Pub/Sub publisher for notification fan-out
	var publisher pubsub.Publisher
	if cfg.GCPProjectID != "" {
		p, err := pubsub.NewPublisher(context.Background(), cfg)
		if err != nil {
			logger.Error().Msgf("Failed to create Pub/Sub publisher: %v", err)
			return nil, nil, err
		}
		publisher = p
	}

	// 5. Resolve the SendGrid key and pick a mailer
	sendGridKey := cfg.SendGridAPIKey
	if sendGridKey == "" && cfg.SendGridAPIKeySecretName != "" && cfg.GCPProjectID != "" {
		secretSvc, err := service.NewSecretService(context.Background(), cfg)
		if err != nil {
			logger.Error().Msgf("Failed to create Secret Manager client: %v", err)
			return nil, nil, err
		}
		sendGridKey, err = secretSvc.Get(context.Background(), cfg.SendGridAPIKeySecretName)
		if err != nil {
			logger.Error().Msgf("Failed to fetch SendGrid key: %v", err)
			return nil, nil, err
		}
	}
	var mailer service.Mailer
	if sendGridKey != "" {
		mailer = service.NewSendGridMailer(sendGridKey, cfg.EmailFrom, logger)
	} else {
		logger.Warn().Msg("No SendGrid key configured, verification links will only be logged")
		mailer = service.NewLogMailer(logger)
	}

	// 6. Initialize repositories & services & handlers
	courseRepo := repository.NewCourseRepo(pool)
	reviewRepo := repository.NewReviewRepo(pool)
	likeRepo := repository.NewLikeRepo(pool)
	userRepo := repository.NewUserRepo(pool)
	verificationRepo := repository.NewVerificationRepo(pool)
	searchRepo := repository.NewSearchRepo(pool)
	notificationRepo := repository.NewNotificationRepo(pool)
	statsRepo := repository.NewStatsRepo(pool)

	courseSvc := service.NewCourseService(courseRepo, reviewRepo, likeRepo, redisClient, logger)
	searchSvc := service.NewSearchService(searchRepo, logger)
	userSvc := service.NewUserService(userRepo, logger)
	notificationSvc := service.NewNotificationService(notificationRepo, publisher, cfg.NotificationTopic, logger)
	verificationSvc := service.NewVerificationService(userRepo, verificationRepo, mailer, notificationSvc, cfg.VerificationBaseURL, logger)
	statsSvc := service.NewStatsService(statsRepo, courseRepo, userRepo, logger)

	dispatcher := event.NewDispatcher(courseSvc, userSvc, searchSvc, logger)

	userHandler := handler.NewUserHandler(userSvc, dispatcher, validate)
	courseHandler := handler.NewCourseHandler(courseSvc)
	verificationHandler := handler.NewVerificationHandler(verificationSvc, validate)
	eventHandler := handler.NewEventHandler(dispatcher)
	adminHandler := handler.NewAdminHandler(courseSvc, notificationSvc, statsSvc)

	// 7. Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret)
	pushAuthMiddleware := middleware.PushAuthMiddleware(cfg.PushAudience, cfg.PushServiceAccountEmail)

	// 8. Create ServeMux router
	mux := http.NewServeMux()

	// Create a subrouter for API v1 with the /v1 prefix
	apiV1Mux := http.NewServeMux()
	userHandler.RegisterRoutes(apiV1Mux)
	courseHandler.RegisterRoutes(apiV1Mux)
	verificationHandler.RegisterRoutes(apiV1Mux)
	eventHandler.RegisterRoutes(apiV1Mux, pushAuthMiddleware)
	adminHandler.RegisterRoutes(apiV1Mux, authMiddleware)

	// Mount the API v1 routes under /v1
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// 9. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	deps := &Deps{
		Pool:          pool,
		Courses:       courseSvc,
		Notifications: notificationSvc,
		Stats:         statsSvc,
	}
	return middleware.LoggerMiddleware(c.Handler(mux)), deps, nil
}
