package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"travelink/config"
	"travelink/internal/bootstrap"
	"travelink/internal/cache"
	"travelink/internal/kafka"
	"travelink/internal/logging"
	"travelink/internal/repository"
	"travelink/internal/service/booking"
	"travelink/internal/service/coin"
	"travelink/internal/service/document"
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

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := producer.CheckConnection(pingCtx); err != nil {
		logger.Warn("kafka unreachable at startup, events will retry", zap.Error(err))
	}
	cancelPing()

	txm := repository.NewTxManager(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	proofRepo := repository.NewProofRepository(pool)
	coinRepo := repository.NewCoinRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)
	referenceRepo := repository.NewReferenceRepository(pool)

	coinService := coin.NewCoinService(coinRepo, referenceRepo, txm, logger,
		coin.WithProducer(producer, cfg.Kafka.NotificationsTopic))
	scheduleService := schedule.NewScheduleService(scheduleRepo, referenceRepo, redisCache, logger)
	bookingService := booking.NewBookingService(
		scheduleRepo,
		ticketRepo,
		proofRepo,
		referenceRepo,
		coinService,
		txm,
		int64(cfg.Booking.CoinCostPerPassenger),
		logger,
		booking.WithCache(redisCache),
		booking.WithProducer(producer, cfg.Kafka.BookingTopic, cfg.Kafka.NotificationsTopic),
		booking.WithSeatHoldTTL(time.Duration(cfg.Booking.SeatHoldTTLMinutes)*time.Minute),
	)
	documentService := document.NewDocumentService(
		documentRepo,
		ticketRepo,
		referenceRepo,
		coinService,
		document.NewHTMLRenderer(cfg.Document.OutputDir, cfg.Document.BaseURL),
		txm,
		int64(cfg.Document.CoinCost),
		logger,
	)

	services := bootstrap.Services{
		Schedules: scheduleService,
		Bookings:  bookingService,
		Coins:     coinService,
		Documents: documentService,
	}

	if err := bootstrap.Run(ctx, cfg, services, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
