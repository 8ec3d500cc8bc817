package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	_ "viewtube/docs" // 引入生成的 Swagger 文档
	"viewtube/internal/api/handlers"
	"viewtube/internal/api/router"
	authapp "viewtube/internal/auth/app"
	authrepo "viewtube/internal/auth/repository"
	channelapp "viewtube/internal/channel/app"
	channelrepo "viewtube/internal/channel/repository"
	commentapp "viewtube/internal/comment/app"
	commentdomain "viewtube/internal/comment/domain"
	commentrepo "viewtube/internal/comment/repository"
	libraryapp "viewtube/internal/library/app"
	libraryrepo "viewtube/internal/library/repository"
	searchapp "viewtube/internal/search/app"
	searchrepo "viewtube/internal/search/repository"
	subapp "viewtube/internal/subscription/app"
	subrepo "viewtube/internal/subscription/repository"
	videoapp "viewtube/internal/video/app"
	videodomain "viewtube/internal/video/domain"
	videorepo "viewtube/internal/video/repository"
	"viewtube/pkg/config"
	"viewtube/pkg/database"
	"viewtube/pkg/logger"
	testtool "viewtube/pkg/test_tool"
	"viewtube/pkg/token"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.APIServer, config.EnvConfig.APIServerLogPath)
	cfg := config.LoadConfig[config.APIServer](config.EnvConfig.APIServer, config.EnvConfig.APIServerYAMLPath)
	testtool.StartPprof()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. MongoDB
	mongoURI := fmt.Sprintf("mongodb://%s:%s@%s:%d",
		cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongoDB, err := database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    mongoURI,
		RetryCount:    cfg.Mongo.RetryCount,
		RetryInterval: time.Duration(cfg.Mongo.RetryInterval) * time.Second,
	}, cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal("Unable to connect to MongoDB after retries", zap.Error(err))
	}
	defer mongoDB.Close(context.Background())

	// 2. Redis
	redisClient, err := database.NewRedisClient(cfg.Redis.Addr, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal("Unable to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	// 3. MinIO
	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:   cfg.MinIO.Endpoint,
		User:       cfg.MinIO.User,
		Password:   cfg.MinIO.Password,
		BucketName: cfg.MinIO.BucketName,
		UseSSL:     cfg.MinIO.UseSSL,

		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to minio after retries", zap.Error(err))
	}

	// 4. Kafka（觀看事件分析流）
	kafkaWriter, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Kafka Writer 建立失敗", zap.Error(err))
	}
	defer kafkaWriter.Close()

	// 5. RabbitMQ（後製工作 queue）
	rabbitConn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    cfg.RabbitMQ.URI,
		RetryCount:    cfg.RabbitMQ.RetryCount,
		RetryInterval: time.Duration(cfg.RabbitMQ.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("RabbitMQ 連線失敗", zap.Error(err))
	}
	defer rabbitConn.Close()

	rabbitChannel, err := database.GetRabbitMQChannelWithRetry(rabbitConn,
		cfg.RabbitMQ.RetryCount, time.Duration(cfg.RabbitMQ.RetryInterval))
	if err != nil {
		logger.Log.Fatal("取得 RabbitMQ Channel 失敗", zap.Error(err))
	}
	defer rabbitChannel.Close()

	if _, err := rabbitChannel.QueueDeclare(
		videoapp.ProcessingQueue, // queue name
		true,                     // durable
		false,                    // autoDelete
		false,                    // exclusive
		false,                    // noWait
		nil,                      // arguments
	); err != nil {
		logger.Log.Fatal("Queue Declare failed", zap.Error(err))
	}

	// repositories
	userRepo := authrepo.NewUserRepository(mongoDB.Database)
	channelRepo := channelrepo.NewChannelRepository(mongoDB.Database)
	videoRepo := videorepo.NewVideoRepository(mongoDB.Database)
	counterRepo := videorepo.NewViewCounterRepository(mongoDB.Database)
	subRepo := subrepo.NewSubscriptionRepository(mongoDB.Database)
	commentRepo := commentrepo.NewCommentRepository(mongoDB.Database)
	termRepo := searchrepo.NewSearchTermRepository(mongoDB.Database)
	playlistRepo := libraryrepo.NewPlaylistRepository(mongoDB.Database)
	savedRepo := libraryrepo.NewSavedVideoRepository(mongoDB.Database)
	historyRepo := libraryrepo.NewWatchHistoryRepository(mongoDB.Database)
	sessionRepo := libraryrepo.NewWatchSessionRepository(mongoDB.Database)

	ensureIndexes(ctx,
		userRepo.EnsureIndexes,
		channelRepo.EnsureIndexes,
		videoRepo.EnsureIndexes,
		counterRepo.EnsureIndexes,
		subRepo.EnsureIndexes,
		commentRepo.EnsureIndexes,
		termRepo.EnsureIndexes,
		savedRepo.EnsureIndexes,
		historyRepo.EnsureIndexes,
	)

	trendingCache := database.NewRedisRepository[[]videodomain.TrendingEntry](redisClient)
	commentCache := database.NewRedisRepository[commentdomain.CommentPage](redisClient)
	commentPubSub := commentrepo.NewCommentPubSub(redisClient)
	kafkaRepo := database.NewKafkaRepository(kafkaWriter)
	rabbitRepo := database.NewRabbitRepository(rabbitChannel)

	tokens := token.NewService(cfg.Token, config.EnvConfig.APIServer)

	// use cases
	authUC := authapp.NewAuthUseCase(userRepo, tokens)
	channelUC := channelapp.NewChannelUseCase(channelRepo, userRepo, videoRepo, counterRepo, subRepo,
		commentRepo, savedRepo, historyRepo, playlistRepo, sessionRepo, mongoDB)
	subUC := subapp.NewSubscriptionUseCase(subRepo, userRepo, channelRepo, mongoDB)
	videoUC := videoapp.NewVideoUseCase(videoRepo, counterRepo, userRepo, channelRepo,
		historyRepo, sessionRepo, playlistRepo, savedRepo, commentRepo,
		minioClient, kafkaRepo, rabbitRepo, mongoDB)
	trendingUC := videoapp.NewTrendingUseCase(counterRepo, videoRepo, userRepo, channelRepo, trendingCache)
	commentUC := commentapp.NewCommentUseCase(commentRepo, commentPubSub, userRepo, videoRepo, commentCache)
	searchUC := searchapp.NewSearchUseCase(videoRepo, termRepo, userRepo)
	libraryUC := libraryapp.NewLibraryUseCase(playlistRepo, savedRepo, historyRepo, videoRepo)

	// fiber app + access log
	r := fiber.New(fiber.Config{BodyLimit: 512 * 1024 * 1024})
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.APIServerLogPath),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, tokens, cfg.CORSOrigin, router.Handlers{
		Auth:         handlers.NewAuthHandler(authUC, tokens),
		Channel:      handlers.NewChannelHandler(channelUC, subUC),
		Video:        handlers.NewVideoHandler(videoUC, trendingUC),
		Comment:      handlers.NewCommentHandler(commentUC),
		Search:       handlers.NewSearchHandler(searchUC),
		Subscription: handlers.NewSubscriptionHandler(subUC),
		Library:      handlers.NewLibraryHandler(libraryUC),
		CommentWS:    commentapp.NewCommentWebsocketHandler(commentPubSub),
	})

	if err := r.Listen(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed to start", zap.Error(err))
	}
}

// ensureIndexes 啟動時建立所有集合的索引，失敗直接結束
func ensureIndexes(ctx context.Context, fns ...func(context.Context) error) {
	for _, fn := range fns {
		if err := fn(ctx); err != nil {
			logger.Log.Fatal("Failed to ensure indexes", zap.Error(err))
		}
	}
}
