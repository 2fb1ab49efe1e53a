package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/zkmarket/broker/pkg/chain"
	"github.com/zkmarket/broker/pkg/config"
	"github.com/zkmarket/broker/pkg/db"
	"github.com/zkmarket/broker/pkg/events"
	"github.com/zkmarket/broker/pkg/log"
	"github.com/zkmarket/broker/pkg/market"
	"github.com/zkmarket/broker/pkg/model"
	"github.com/zkmarket/broker/pkg/monitor"
	"github.com/zkmarket/broker/pkg/server"
	"github.com/zkmarket/broker/pkg/server/endpoints"
	"github.com/zkmarket/broker/pkg/server/middleware"
	"github.com/zkmarket/broker/pkg/storage"
	gormstore "github.com/zkmarket/broker/pkg/store/gorm"
	"github.com/zkmarket/broker/pkg/task"
)

// stakeTokenDecimals is the decimals of the market's stake token, used to
// parse the stake balance alert thresholds.
const stakeTokenDecimals = 18

// incomingBufferSize bounds how many priced orders can queue for the monitor
// before submissions are rejected.
const incomingBufferSize = 256

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return ""
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return ""
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8082
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the broker",
	Long: `Run the broker: the order monitor, chain monitor and status API.

Requires the environment variables DATABASE_URL and BROKER_PRIVATE_KEY.
The chain RPC URL and market contract address come from the configuration
file (BROKER_CONFIG_PATH) or the BROKER_RPC_URL and BROKER_MARKET_ADDRESS
environment variables.

By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, ok := os.LookupEnv("BROKER_PRIVATE_KEY")
		if !ok || privateKey == "" {
			fmt.Fprintln(os.Stderr, "BROKER_PRIVATE_KEY environment variable is required")
			os.Exit(1)
		}

		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			fmt.Println("Running database migrations...")
			if err := runMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
				os.Exit(1)
			}
		}

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")

		if err := runServer(privateKey, host, port); err != nil {
			fmt.Fprintf(os.Stderr, "Broker failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "Address to bind the status API to")
	serverCmd.Flags().StringP("port", "p", defaultPort(), "Port to bind the status API to")
	serverCmd.Flags().Bool("no-migrate", false, "Skip database migrations on startup")
}

func runServer(privateKey, host, port string) error {
	logger := log.WithComponent("brokerctl")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Chain.RPCURL == "" {
		return fmt.Errorf("chain rpc_url is not configured")
	}
	if cfg.Chain.MarketAddress == "" {
		return fmt.Errorf("chain market_address is not configured")
	}
	if host == "" {
		host = cfg.API.BindAddress
	}
	if port == "" {
		port = cfg.API.Port
	}
	handle := config.NewHandle(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(db.Config{})
	if err != nil {
		return err
	}
	ordersStore := gormstore.NewStore(gdb)

	eventStore, err := events.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open event store: %w", err)
	}
	defer func() { _ = eventStore.Close() }()

	provider, err := chain.Dial(ctx, cfg.Chain.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to chain RPC: %w", err)
	}
	chainID, err := provider.Client().ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch chain ID: %w", err)
	}

	mkt, err := market.NewEthMarket(
		provider.Client(),
		provider,
		common.HexToAddress(cfg.Chain.MarketAddress),
		privateKey,
		chainID,
	)
	if err != nil {
		return err
	}
	if secs := cfg.Market.TxnTimeoutSecs; secs > 0 {
		mkt.TxTimeout = time.Duration(secs) * time.Second
	}

	blockTime := time.Duration(cfg.Chain.BlockTime) * time.Second
	chainMonitor := chain.NewMonitor(provider, blockTime)

	incoming := make(chan *model.OrderRequest, incomingBufferSize)

	orderMonitor := monitor.New(monitor.Params{
		Store:              ordersStore,
		Market:             mkt,
		Provider:           provider,
		Chain:              chainMonitor,
		Config:             handle,
		Incoming:           incoming,
		Events:             eventStore,
		StakeTokenDecimals: stakeTokenDecimals,
	})

	health := func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}

	auth := middleware.NewAPIAuthenticator()
	if os.Getenv("BROKER_API_SECRET") == "" {
		logger.Warn().Msg("BROKER_API_SECRET is not set, authenticated API routes will reject all requests")
	}

	apiServer := server.NewServer(ordersStore, handle, health, host, port)
	endpoints.RegisterEndpoints(apiServer, auth)
	endpoints.RegisterSubmitEndpoints(apiServer, auth, incoming)

	supervisor := task.NewSupervisor()
	supervisor.Add(chainMonitor)
	supervisor.Add(orderMonitor)
	supervisor.Add(apiServer)
	if _, err := os.Stat(cfg.ConfigFilePath()); err == nil {
		supervisor.Add(taskFunc{name: "config_watcher", run: handle.Watch})
	} else {
		logger.Info().Msg("no config file found, hot reload disabled")
	}

	fetcher, err := storage.NewFromEnv(ctx)
	if err != nil {
		return fmt.Errorf("failed to build storage client: %w", err)
	}
	supervisor.Add(storage.NewPrefetcher(ordersStore, fetcher, blockTime))

	logger.Info().
		Str("market", cfg.Chain.MarketAddress).
		Str("chain_id", chainID.String()).
		Str("prover", mkt.Caller().Hex()).
		Str("api", host+":"+port).
		Msg("broker starting")

	return supervisor.Run(ctx)
}

// taskFunc adapts a bare function to task.RetryTask.
type taskFunc struct {
	name string
	run  func(ctx context.Context) error
}

func (t taskFunc) Name() string                  { return t.name }
func (t taskFunc) Run(ctx context.Context) error { return t.run(ctx) }
