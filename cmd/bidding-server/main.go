package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bidding-system/internal/api"
	"bidding-system/internal/api/handlers"
	"bidding-system/internal/config"
	"bidding-system/internal/domain"
	"bidding-system/internal/domain/repositories"
	"bidding-system/internal/infrastructure/leader"
	"bidding-system/internal/infrastructure/livekit"
	"bidding-system/internal/infrastructure/memory"
	"bidding-system/internal/infrastructure/mysql"
	"bidding-system/internal/infrastructure/redis"
	"bidding-system/internal/infrastructure/websocket"
	"bidding-system/internal/services"
	"bidding-system/pkg/logger"
	"bidding-system/pkg/utils"

	redisClient "github.com/go-redis/redis/v8"
)

type stores struct {
	products repositories.ProductRepository
	users    repositories.UserRepository
	bids     repositories.BidRepository
	rooms    repositories.RoomRepository
	close    func() error
}

func openStores(ctx context.Context, cfg *config.Config, log logger.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &stores{products: store, users: store, bids: store, rooms: store, close: func() error { return nil }}, nil
	}

	db, err := utils.InitializeMysql(ctx, cfg.MySQL.DSN, cfg.MySQL.MaxOpenConns,
		cfg.MySQL.MaxIdleConns, cfg.MySQL.ConnMaxLifetime)
	if err != nil {
		return nil, err
	}
	log.Info("Connected to MySQL")

	return &stores{
		products: mysql.NewMySQLProductRepository(db),
		users:    mysql.NewMySQLUserRepository(db),
		bids:     mysql.NewMySQLBidRepository(db),
		rooms:    mysql.NewMySQLRoomRepository(db),
		close:    db.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Log.Level)

	if err := run(cfg, log); err != nil {
		log.Error("Bidding server failed", "error", err)
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// run wires the server and blocks until a shutdown signal or a server
// failure. Every resource opened here is released before it returns.
func run(cfg *config.Config, log logger.Logger) error {
	if cfg.Instance.ID == "" {
		cfg.Instance.ID = utils.GenerateID("instance")
	}
	log.Info("Starting bidding server", "config", cfg.GetConfigString())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Error("Failed to close storage", "error", err)
		}
	}()

	var (
		bus            domain.TopicBus
		leaderElection domain.LeaderElection
		rdb            *redisClient.Client
	)
	switch cfg.Notifications.Bus {
	case config.BusMemory:
		log.Warn("Using in-process notification bus, fan-out is limited to this instance")
		bus = memory.NewTopicBus()
	default:
		rdb, err = utils.InitializeRedis(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer rdb.Close()
		log.Info("Connected to Redis", "address", cfg.Redis.Address)

		bus = redis.NewTopicBus(rdb, log)
		leaderElection = leader.NewRedisLeaderElection(rdb, cfg.Leader.Key, cfg.Leader.TTL)
	}

	publisher := services.NewNotificationPublisher(bus, log)
	bidding := services.NewBiddingService(st.products, st.users, st.bids, publisher, log)
	rooms := services.NewRoomService(st.products, st.users, st.rooms, livekit.NewClient(cfg.LiveKit, log), log)

	registry := websocket.NewSessionRegistry(log)
	notifications := websocket.NewNotificationHandler(bidding, bus, registry, log)

	e := api.NewRouter(cfg.Server, api.Handlers{
		Products:      handlers.NewProductHandler(bidding, log),
		Rooms:         handlers.NewRoomHandler(rooms, log),
		Notifications: notifications,
	}, log)

	var scheduler *services.WinningBidScheduler
	if cfg.Scheduler.Enabled {
		// leaderElection is nil with the memory bus, every tick then runs.
		scheduler = services.NewWinningBidScheduler(cfg.Scheduler.WinningBidsSpec, st.bids,
			leaderElection, cfg.Instance.ID, log)
		if err := scheduler.Start(context.Background()); err != nil {
			return fmt.Errorf("start winning bid scheduler: %w", err)
		}
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting HTTP server", "address", serverAddr, "prefix", cfg.Server.MainPrefix)

	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
		log.Info("Shutting down bidding server...")
	case err := <-serverErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Hijacked websocket connections are not tracked by the HTTP server.
	registry.CloseAll()

	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			log.Error("Failed to stop scheduler", "error", err)
		}
	}

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Bidding server stopped")
	return runErr
}
