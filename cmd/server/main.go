package main

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkout-service/internal/config"
	"checkout-service/internal/controllers/http"
	"checkout-service/internal/infra"
	mmysql "checkout-service/internal/infra/mysql"
	"checkout-service/internal/infra/rabbitmq"
	infraredis "checkout-service/internal/infra/redis"
	mysqlrepo "checkout-service/internal/repository/mysql"
	"checkout-service/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	orderCacheTTL   = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()
	config.SetLogLevel(cfg.LogLevel)
	logger := config.GetLogger()

	db, err := mmysql.NewMySQL(cfg.MySQL)
	if err != nil {
		logger.Fatalf("db: connect: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatalf("db: handle: %v", err)
	}
	defer sqlDB.Close()

	orderRepo := mysqlrepo.NewOrderRepository(db)
	productRepo := mysqlrepo.NewProductRepository(db)
	customerRepo := mysqlrepo.NewCustomerRepository(db)
	inventoryRepo := mysqlrepo.NewInventoryRepository(db)
	paymentRepo := mysqlrepo.NewPaymentRepository(db)

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			logger.Fatalf("failed to init publisher: %v", err)
		}
		defer p.Close()
		publisher = p
	} else {
		logger.Warn("RABBITMQ_URL not set, domain events are dropped")
	}

	var provider infra.PaymentProviderInterface
	if cfg.Razorpay.Configured() {
		provider = infra.NewRazorpayClient(cfg.Razorpay.BaseURL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.Timeout)
	} else {
		logger.Warn("Razorpay keys not set, payment endpoints will answer 503")
	}

	orderService := services.NewOrderService(orderRepo, productRepo, customerRepo, publisher)
	inventoryService := services.NewInventoryService(inventoryRepo, productRepo)
	paymentService := services.NewPaymentService(cfg.Razorpay, provider, paymentRepo, orderRepo, publisher)

	handler := http.NewHandler(orderService, inventoryService, paymentService)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(http.CorrelationID(), http.CORS(cfg), http.ErrorLogger(logger), gin.Recovery())

	if cfg.Redis.Enabled() {
		redisClient, err := infraredis.NewClient(cfg.Redis)
		if err != nil {
			logger.Fatalf("redis: connect: %v", err)
		}
		defer redisClient.Close()

		paymentService.SetLocker(infraredis.NewLocker(redisClient, 0))
		handler.SetCache(infraredis.NewCache(redisClient, "checkout:", orderCacheTTL))
		if cfg.RateLimit.Enabled {
			r.Use(http.NewRateLimiter(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window).Middleware)
		}
	} else if cfg.RateLimit.Enabled {
		logger.Warn("rate limiting needs REDIS_HOST, running without it")
	}

	handler.RegisterRoutes(r)
	r.NoRoute(http.NotFound)

	srv := &nethttp.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Starting checkout service on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server stopped: %v", err)
	}
}
