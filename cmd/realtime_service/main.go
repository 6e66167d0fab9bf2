package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/app"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/repository"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/router"
	"github.com/B25-sm/clicktosell-sub002/pkg/config"
	"github.com/B25-sm/clicktosell-sub002/pkg/database"
	"github.com/B25-sm/clicktosell-sub002/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.RealtimeService, config.EnvConfig.RealtimeServiceLogPath)
	cfg := config.LoadConfig[config.Realtime](config.EnvConfig.RealtimeService, config.EnvConfig.RealtimeServiceYAMLPath)

	// 1. 建立 Redis 連線 (bounded logs + Pub/Sub)
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// 2. 建立 Kafka Writer (analytics sink，可選)
	var analytics repository.AnalyticsSink
	if len(cfg.Kafka.Brokers) > 0 {
		writer, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
			Brokers:       cfg.Kafka.Brokers,
			Topic:         cfg.Kafka.Topic,
			RetryCount:    cfg.Kafka.RetryCount,
			RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
		})
		if err != nil {
			// 遙測是 best effort，kafka 不可用時服務照常啟動
			logger.Log.Warn(fmt.Sprintf("kafka unavailable, analytics disabled: %v", err))
		} else {
			analytics = repository.NewKafkaAnalyticsSink(writer)
			defer writer.Close()
		}
	}

	// 3. 初始化 Repository
	store := repository.NewRedisChannelStore(redisClient)
	presenceRecords := database.NewRedisRepository[domain.PresenceRecord](redisClient)

	// 4. 初始化 UseCases
	messageUC := app.NewMessageUseCase(store)
	presenceUC := app.NewPresenceUseCase(presenceRecords, store)
	notificationUC := app.NewNotificationUseCase(store)
	activityUC := app.NewActivityUseCase(store, analytics)
	searchUC := app.NewSearchUseCase(store, analytics)
	registry := app.NewSubscriptionRegistry(store)

	// 5. 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.RealtimeServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, app.NewRealtimeWebsocketHandler(
		messageUC, presenceUC, notificationUC, activityUC, searchUC, registry,
	))

	// Listen
	port := ":" + cfg.Port
	go func() {
		log.Printf("Realtime Service listening on %s", port)
		if err := r.Listen(port); err != nil {
			log.Fatalf("Failed to start Fiber: %v", err)
		}
	}()

	// 收到訊號後先收掉所有訂閱再停服務
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Realtime Service shutting down")
	registry.Shutdown()
	if err := r.Shutdown(); err != nil {
		logger.Log.Errorf("fiber shutdown err:", err)
	}
	if err := redisClient.Close(); err != nil {
		logger.Log.Errorf("redis close err:", err)
	}
	logger.Log.Sync()
}
