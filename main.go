package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"auctionhouse/internal/config"
	"auctionhouse/internal/database"
	"auctionhouse/internal/database/db_client"
	"auctionhouse/internal/http/http_server"
	"auctionhouse/internal/notify"
	"auctionhouse/internal/ratelimit"
	"auctionhouse/internal/redis/redis_client"
	"auctionhouse/internal/repository"
	"auctionhouse/internal/services/auth"
	"auctionhouse/internal/services/bidding"
	"auctionhouse/internal/services/winner"
	"auctionhouse/internal/ws"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config
	var redisClient *redis.Client

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis
	redisClient, err = redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	Log.Debug("Redis client created successfully")

	// 4. Postgres db client + migrations
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	if err := database.RunMigrations(ctx, pgDb); err != nil {
		Log.Fatal("pg-migrate", zap.Error(err))
	}

	// 5. Services
	store := repository.NewStore(pgDb)

	limiter := ratelimit.NewLimiter(redisClient, store,
		ratelimit.WindowConfig{Max: cfg.BidRateLimit, Window: cfg.BidRateWindow, CacheTTL: cfg.BidRateCacheTTL},
		ratelimit.WindowConfig{Max: cfg.LoginRateLimit, Window: cfg.LoginRateWindow, CacheTTL: cfg.LoginRateCacheTTL},
	)

	dispatcher := notify.NewDispatcher(
		notify.NewSMTPMailer(cfg.SmtpHost, cfg.SmtpPort, cfg.MailFrom),
		redisClient,
		cfg.FrontendURL,
	)

	engine := bidding.NewBiddingEngine(store, limiter, dispatcher, cfg.BidMinIncrement)
	authSvc := auth.NewAuthService(store, limiter, cfg.JwtSecret, cfg.TokenTTL)
	resolver := winner.NewResolver(store, dispatcher)

	// 6. Background: ended-auction sweeper
	winner.RunSweeper(ctx, store, resolver, cfg.WinnerSweepInterval)

	// 7. WebSockets hub + Redis fan-out
	hub := ws.NewHub()

	// 8. Initialize the WS server
	wsSrv := ws.NewWsServer(hub, redisClient, engine)

	// 9. HTTP + WS server
	httpServer := http_server.NewHttpServer(cfg.HttpServerPort, wsSrv, engine, authSvc, resolver)
	go func() {
		<-ctx.Done()
		_ = httpServer.Dispose()
	}()
	if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
