package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"travelink/api"
	"travelink/config"
	"travelink/internal/observability"
	"travelink/internal/service/booking"
	"travelink/internal/service/coin"
	"travelink/internal/service/document"
	"travelink/internal/service/schedule"
)

// Services bundles the use cases the HTTP layer exposes.
type Services struct {
	Schedules schedule.ScheduleUseCase
	Bookings  booking.BookingUseCase
	Coins     coin.CoinUseCase
	Documents document.DocumentUseCase
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services, log *zap.Logger) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, svc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	log.Info("http server started", zap.String("address", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, svc Services) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestMetrics())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api.NewScheduleHandler(svc.Schedules, cfg.Booking.UpcomingListLimit).Register(router.Group("/schedules"))
	api.NewTicketHandler(svc.Bookings).Register(router.Group("/tickets"))
	api.NewProofHandler(svc.Bookings).Register(router.Group("/proofs"))
	api.NewCoinHandler(svc.Coins).Register(router.Group("/coins"))
	api.NewDocumentHandler(svc.Documents).Register(router.Group("/documents"))

	return router
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observability.RequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
