package main

import (
	"context"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/gabapcia/chainkeeper/internal/accountregistry"
	"github.com/gabapcia/chainkeeper/internal/chainregistry"
	"github.com/gabapcia/chainkeeper/internal/eventbus"
	"github.com/gabapcia/chainkeeper/internal/handlers/cli"
	"github.com/gabapcia/chainkeeper/internal/infra/blockchain/ethereum"
	"github.com/gabapcia/chainkeeper/internal/infra/storage/badger"
	"github.com/gabapcia/chainkeeper/internal/infra/storage/redis"
	"github.com/gabapcia/chainkeeper/internal/pkg/logger"
	"github.com/gabapcia/chainkeeper/internal/pkg/telemetry"
	httptransport "github.com/gabapcia/chainkeeper/internal/pkg/transport/http"
	"github.com/gabapcia/chainkeeper/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/chainkeeper/internal/pkg/validator"
	"github.com/gabapcia/chainkeeper/internal/txtracker"
	"github.com/gabapcia/chainkeeper/internal/walletregistry"
)

const serviceName = "chainkeeper"

// config is populated from CHAINKEEPER_* environment variables.
type config struct {
	StorageDir string `envconfig:"STORAGE_DIR" default:"./chainkeeper-data"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	RPCEndpoint string        `envconfig:"RPC_ENDPOINT" required:"true"`
	RPCTimeout  time.Duration `envconfig:"RPC_TIMEOUT" default:"15s"`

	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"30s"`

	// Redis is optional: when no address is set, reconciliation relies on
	// the in-process guard alone.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	TelemetryEnabled bool `envconfig:"TELEMETRY_ENABLED" default:"false"`
}

func main() {
	ctx := context.Background()

	var cfg config
	if err := envconfig.Process(serviceName, &cfg); err != nil {
		logger.Fatal(ctx, "failed to load configuration", "error", err)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			logger.Fatal(ctx, "failed to initialize telemetry", "error", err)
		}
		defer shutdown(ctx)
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		logger.Fatal(ctx, "failed to initialize logger", "error", err)
	}
	defer logger.Sync()

	validator.Init()

	store, err := badger.NewClient(cfg.StorageDir)
	if err != nil {
		logger.Fatal(ctx, "failed to open storage", "storage.dir", cfg.StorageDir, "error", err)
	}
	defer store.Close()

	var guard txtracker.IdempotencyGuard = store
	if cfg.RedisAddr != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal(ctx, "failed to connect to redis", "redis.addr", cfg.RedisAddr, "error", err)
		}
		defer redisClient.Close()

		guard = redisClient
	}

	bus := eventbus.New()

	httpClient := httptransport.NewClient(httptransport.WithTimeout(cfg.RPCTimeout)).StandardClient()
	chainQuery := ethereum.NewClient(jsonrpc.NewClient(httpClient, cfg.RPCEndpoint))

	tracker := txtracker.New(store, chainQuery,
		txtracker.WithIdempotencyGuard(guard),
		txtracker.WithChainDirectory(store),
		txtracker.WithEventPublisher(bus),
		txtracker.WithSweepInterval(cfg.SweepInterval),
	)

	accounts := accountregistry.New(store, store,
		accountregistry.WithBlobStorage(store),
		accountregistry.WithMetadataPurger(store),
		accountregistry.WithEventPublisher(bus),
	)

	chains := chainregistry.New(store, store,
		chainregistry.WithAccountMirror(accounts),
		chainregistry.WithTxLogPurger(tracker),
		chainregistry.WithMetadataPurger(store),
		chainregistry.WithEventPublisher(bus),
	)

	wallets := walletregistry.New(store,
		walletregistry.WithAccountDirectory(accounts),
		walletregistry.WithEventPublisher(bus),
	)

	if err := cli.Run(ctx, chains, accounts, wallets, tracker); err != nil {
		logger.Error(ctx, "command failed", "error", err)
		os.Exit(1)
	}
}
