package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"catalog-sync/core/config"
	"catalog-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncStores string

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync [products|prices]",
	Short: "Run one catalog sync",
	Long: `Runs one sync of the given type and exits. "products" reconciles new
and changed catalog items into the storefronts; "prices" pushes price
updates for items already synced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		service, err := buildService(cfg, logg)
		if err != nil {
			logg.Error("Failed to build sync service", zap.Error(err))
			return err
		}

		// SIGINT/SIGTERM stop the run at the next group boundary.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var storeIDs []string
		if syncStores != "" {
			storeIDs = strings.Split(syncStores, ",")
		}

		outcome, err := service.Run(ctx, args[0], storeIDs)
		if err != nil {
			logg.Error("Sync failed", zap.Error(err))
			return err
		}

		logg.Info("Sync complete",
			zap.String("run_id", outcome.RunID),
			zap.Int("processed", outcome.Processed),
			zap.Int("succeeded", outcome.Succeeded),
			zap.Int("failed", outcome.Failed))

		if outcome.Failed > 0 {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncStores, "stores", "", "Comma-separated store IDs (default: all enabled stores)")
	RootCmd.AddCommand(syncCmd)
}
