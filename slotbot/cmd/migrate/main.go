package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/slotkeeper/slotbot/slotbot"
	"github.com/slotkeeper/slotbot/slotbot/database"
	"github.com/slotkeeper/slotbot/slotbot/logger"
	"github.com/slotkeeper/slotbot/slotbot/migration"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		legacyPath string
		batchSize  int
		reset      bool
	)

	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "config.toml", "path to config")
	flagSet.StringVar(&legacyPath, "legacy", "data.db", "path to the previous bot's SQLite database")
	flagSet.IntVar(&batchSize, "batch-size", 500, "rows per insert")
	flagSet.BoolVar(&reset, "reset", false, "truncate every slot table before importing")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	slog.SetDefault(slog.New(logger.NewHandler(slog.LevelInfo)))

	cfg, err := slotbot.LoadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.MigrateSchema(ctx); err != nil {
		return err
	}
	if reset {
		if err := db.ResetAppTables(ctx); err != nil {
			return err
		}
	}

	migrator := migration.NewMigrator(db.BunDB(), legacyPath)
	migrator.SetBatchSize(batchSize)

	if _, err := migrator.MigrateAll(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("Migration completed successfully!")
	return nil
}
