package main

import (
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply the SQL migrations found in slot_db.migrations_path.

Examples:
  slot-service migrate --config config/local.yaml
  slot-service migrate --down 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db := postgres.MustInitDB(cfg)
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			if down > 0 {
				return migrate.RollbackMigrations(db, cfg.SlotDB.MigrationsPath, down)
			}
			return migrate.RunMigrations(db, cfg.SlotDB.MigrationsPath)
		},
	}

	cmd.Flags().IntVar(&down, "down", 0, "roll back this many migrations instead of applying")
	return cmd
}
