package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"travelink/config"
	"travelink/internal/cache"
	"travelink/internal/kafka"
	"travelink/internal/logging"
	"travelink/internal/notify"
	"travelink/internal/repository"
	"travelink/internal/service/schedule"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewLogger()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.ScheduleCacheTTL)*time.Second)
	defer redisCache.Close()

	scheduleRepo := repository.NewScheduleRepository(pool)
	referenceRepo := repository.NewReferenceRepository(pool)
	scheduleService := schedule.NewScheduleService(scheduleRepo, referenceRepo, redisCache, logger)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sink := notify.NewSink(logger)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			return sink.Handle(ctx, msg.Value)
		}); err != nil {
			logger.Warn("consumer stopped", zap.Error(err))
		}
	}()

	sweepInterval := time.Duration(cfg.Worker.DepartureSweepMinutes) * time.Minute
	sweepTicker := time.NewTicker(sweepInterval)
	defer sweepTicker.Stop()

	for {
		select {
		case <-sweepTicker.C:
			runDepartureSweep(ctx, redisCache, scheduleService, sweepInterval, logger)
		case <-ctx.Done():
			logger.Info("worker shutting down")
			return
		}
	}
}

// runDepartureSweep marks overdue trips departed. The redsync mutex keeps
// multiple worker replicas from sweeping the same window concurrently; a
// replica that loses the lock just waits for the next tick.
func runDepartureSweep(ctx context.Context, redisCache *cache.RedisCache, svc schedule.ScheduleUseCase, ttl time.Duration, logger *zap.Logger) {
	mutex := redisCache.SweepMutex(ttl)
	if err := mutex.LockContext(ctx); err != nil {
		logger.Debug("departure sweep lock held elsewhere", zap.Error(err))
		return
	}
	defer func() {
		if _, err := mutex.UnlockContext(ctx); err != nil {
			logger.Warn("release sweep lock", zap.Error(err))
		}
	}()

	departed, err := svc.SweepDepartures(ctx)
	if err != nil {
		logger.Error("departure sweep failed", zap.Error(err))
		return
	}
	if len(departed) > 0 {
		logger.Info("marked trips departed", zap.Int("count", len(departed)))
	}
}
