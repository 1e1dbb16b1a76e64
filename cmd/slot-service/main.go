package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	Version    = "dev"
	configPath string
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}

	rootCmd := &cobra.Command{
		Use:     "slot-service",
		Short:   "Slot purchase fulfillment service",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (defaults to $SLOT_CONFIG_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config and installs the process logger.
func loadConfig() (*config.SlotConfig, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("SLOT_CONFIG_PATH")
	}
	if path == "" {
		return nil, fmt.Errorf("no config: pass --config or set SLOT_CONFIG_PATH")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger.NewLogger(cfg.LogConfig))
	return cfg, nil
}
