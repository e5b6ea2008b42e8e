package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cuemby/fenwick/pkg/api"
	"github.com/cuemby/fenwick/pkg/catalog"
	"github.com/cuemby/fenwick/pkg/config"
	"github.com/cuemby/fenwick/pkg/dispatcher"
	"github.com/cuemby/fenwick/pkg/log"
	"github.com/cuemby/fenwick/pkg/metrics"
	"github.com/cuemby/fenwick/pkg/taskstore"
	"github.com/cuemby/fenwick/pkg/userstore"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fenwick",
	Short: "Fenwick - OSINT task dispatcher",
	Long: `Fenwick coordinates search tasks across a fleet of collector
workers: it authenticates clients and collectors, matches tasks to
sources via a catalog, balances work across the live fleet, and
streams results back as they arrive.`,
	Version: Version,
	RunE:    runDispatcher,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Fenwick version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.Flags().String("config", "", "Path to config file (yaml)")

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func runDispatcher(cmd *cobra.Command, _ []string) error {
	logger := log.WithComponent("main")

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	tasks, err := taskstore.NewBoltStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open task store: %w", err)
	}
	defer tasks.Close()

	users, err := userstore.Open(cfg.UserDBPath)
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer users.Close()

	cat := catalog.New(cfg.SourcesPath)

	disp := dispatcher.New(dispatcher.Deps{
		Tasks:                tasks,
		Users:                users,
		Catalog:              cat,
		ResultQueueHighWater: cfg.ResultQueueHighWater,
		HeartbeatTimeout:     cfg.HeartbeatTimeout,
		SweeperInterval:      cfg.SweeperInterval,
	})
	defer disp.Close()

	server := api.NewServer(disp, cfg.StreamPollInterval)
	if err := server.Start(cfg.ClientAddress(), cfg.CollectorAddress()); err != nil {
		return fmt.Errorf("start rpc servers: %w", err)
	}

	if cfg.MetricsAddress != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logger.Info().Str("addr", cfg.MetricsAddress).Msg("metrics listening")
			if err := http.ListenAndServe(cfg.MetricsAddress, mux); err != nil {
				logger.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	logger.Info().Msg("dispatcher ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")
	server.Stop()
	return nil
}
