package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/adapter/eventbus"
	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/restclient"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/core/token"
	"github.com/rl1809/storefront/internal/port"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setLogLevel(cfg.LogLevel)
	log.Info().Str("appName", cfg.AppName).Msg("application starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	cache := storage.NewRedisAdapter(rdb, cfg.CartCacheTTL, cfg.FinalizedMarkerTTL)

	api := restclient.New(cfg.APIBaseURL, cfg.APITimeout)

	var (
		orders port.OrderRepository = restclient.NewOrderClient(api)
		sales  port.SalesRepository = restclient.NewSalesClient(api)
		db     *sqlx.DB
	)
	if cfg.UsesMySQL() {
		dsn, err := cfg.MySQLConnDSN()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid mysql dsn")
		}
		db, err = sqlx.ConnectContext(ctx, "mysql", dsn)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect mysql")
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		log.Info().Msg("connected to mysql")
		if err := storage.ApplySchema(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("failed to apply mysql schema")
		}

		mysqlAdapter := storage.NewMySQLAdapter(db)
		if cfg.OrderBackend == config.BackendMySQL {
			orders = mysqlAdapter
		}
		if cfg.SalesBackend == config.BackendMySQL {
			sales = mysqlAdapter
		}
	}

	// Events are delivered by a worker pool so publishing never blocks a request.
	var (
		broker port.EventPublisher = eventbus.LogPublisher{}
		rabbit *eventbus.RabbitPublisher
	)
	if cfg.RabbitMQURL != "" {
		rabbit, err = eventbus.DialRabbit(cfg.RabbitMQURL, cfg.EventExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect rabbitmq")
		}
		broker = rabbit
		log.Info().Str("exchange", cfg.EventExchange).Msg("connected to rabbitmq")
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, order events are only logged")
	}
	events := eventbus.NewDispatcher(broker, cfg.EventWorkers, cfg.EventQueueSize)
	log.Info().Int("workers", cfg.EventWorkers).Msg("started event workers")

	codec, err := token.NewCodec(cfg.OrderTokenSalt, cfg.OrderTokenMinLength)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build order token codec")
	}
	initialStatus, _ := cfg.InitialStatus()

	// Initialize services
	carts := service.NewCartService(restclient.NewCartClient(api), restclient.NewCatalogClient(api), cache)
	orderService := service.NewOrderService(orders, codec, events)
	reconciler := service.NewSalesReconciler(sales, cache, events)
	mgmt := handler.NewManagement(orderService, reconciler, codec)

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, bearer tokens are verified by the storefront API only; sessions skip the cart cache and operator routes are disabled")
	}
	auth := handler.NewTokenVerifier(cfg.JWTSecret)

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.NewGRPCHandler(mgmt, auth).Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to listen")
	}
	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC server error")
		}
	}()

	// Initialize HTTP server
	gin.SetMode(gin.ReleaseMode)
	httpHandler := handler.NewHTTPHandler(handler.Deps{
		Catalog:         restclient.NewCatalogClient(api),
		Addresses:       restclient.NewAddressClient(api),
		Cache:           cache,
		Carts:           carts,
		Wishlists:       service.NewWishlistService(restclient.NewWishlistClient(api), carts),
		Checkout:        service.NewCheckoutService(orders, carts, codec, events, initialStatus),
		Orders:          orderService,
		Management:      mgmt,
		CheckoutLockTTL: cfg.CheckoutLockTTL,
	}, auth)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpHandler.Router(),
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown")
	}
	log.Info().Msg("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")

	// Drain pending events before the broker goes away
	events.Close()
	log.Info().Msg("event workers stopped")

	if rabbit != nil {
		if err := rabbit.Close(); err != nil {
			log.Warn().Err(err).Msg("rabbitmq close")
		}
	}
	rdb.Close()
	if db != nil {
		db.Close()
	}
	log.Info().Msg("connections closed")
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
