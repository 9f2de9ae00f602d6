package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"sudooom.im.mahjong/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建牌局记录表",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := connectDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := repository.NewGameRecordRepository(db, nil).EnsureSchema(ctx); err != nil {
			return err
		}
		slog.Info("Game record schema ready", "host", cfg.Database.Host, "database", cfg.Database.Name)
		return nil
	},
}
