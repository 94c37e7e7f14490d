package main

import (
	bidding "auction-ledger/internal/biddingService"
	"auction-ledger/internal/config"
	"auction-ledger/internal/events"
	"auction-ledger/internal/repository"
	"auction-ledger/internal/server"
	"auction-ledger/utils"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.New()
	utils.SetLogLevel(cfg.LogLevel)

	repo, cleanup := buildLedger(cfg)
	defer cleanup()

	pub, pubCleanup := buildPublisher(cfg)
	defer pubCleanup()

	minIncrement, err := decimal.NewFromString(cfg.MinIncrement)
	if err != nil {
		utils.Fatal("invalid minimum increment", map[string]any{"value": cfg.MinIncrement, "error": err.Error()})
	}

	auctionSvc := bidding.NewBiddingService(repo, pub, bidding.Config{
		MinIncrement: minIncrement,
		LockWait:     cfg.LockWait,
		AutoClose:    cfg.AutoClose,
	})
	defer auctionSvc.Stop()

	router := server.SetupRouter(auctionSvc)

	utils.Info("starting auction server", map[string]any{"addr": cfg.ListenAddr})
	if err := router.Run(cfg.ListenAddr); err != nil {
		utils.Fatal("server stopped", map[string]any{"error": err.Error()})
	}
}

// buildLedger selects Postgres when configured and falls back to the
// in-memory ledger otherwise.
func buildLedger(cfg *config.Config) (repository.AuctionLedger, func()) {
	if cfg.PostgresAddr == "" {
		utils.Info("using in-memory ledger", nil)
		return repository.NewMemoryRepo(), func() {}
	}

	db, closeDB, err := repository.NewPostgres(cfg.PostgresAddr, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		utils.Fatal("failed to connect to postgres", map[string]any{"addr": cfg.PostgresAddr, "error": err.Error()})
	}

	repo, err := repository.NewPostgresRepo(db)
	if err != nil {
		utils.Fatal("failed to init postgres ledger", map[string]any{"error": err.Error()})
	}

	utils.Info("using postgres ledger", map[string]any{"addr": cfg.PostgresAddr})
	return repo, func() { _ = closeDB() }
}

// buildPublisher wires the redis event bus when configured.
func buildPublisher(cfg *config.Config) (events.Publisher, func()) {
	if cfg.RedisAddr == "" {
		return events.NopPublisher{}, func() {}
	}

	client, closeRedis, err := events.NewRedis(cfg.RedisAddr, cfg.RedisUser, cfg.RedisPassword)
	if err != nil {
		utils.Fatal("failed to connect to redis", map[string]any{"addr": cfg.RedisAddr, "error": err.Error()})
	}

	utils.Info("publishing auction events to redis", map[string]any{"addr": cfg.RedisAddr, "channel": events.Channel})
	return &events.RedisPublisher{Redis: client}, func() { _ = closeRedis() }
}
