package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talentgate/account-service/internal/infrastructure/config"
	"github.com/talentgate/account-service/internal/infrastructure/db/mongo"
	"github.com/talentgate/account-service/internal/infrastructure/storage"
	"github.com/talentgate/account-service/pkg/logger"
)

var skipBucket bool

// ensureIndexesCmd creates the Mongo indexes and the picture bucket.
var ensureIndexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create database indexes and the picture bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load(ctx)
		if err != nil {
			return err
		}
		log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.PrettyLogs(), Service: "accountd"})

		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.StoreTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer func() {
			_ = client.Disconnect(context.Background())
		}()

		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("indexes ensured")

		if skipBucket {
			return nil
		}

		blobs, err := storage.New(ctx, cfg.Blob)
		if err != nil {
			return fmt.Errorf("blob store: %w", err)
		}
		if err := blobs.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("ensure bucket: %w", err)
		}
		log.Info().Str("bucket", blobs.Bucket()).Msg("bucket ensured")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ensureIndexesCmd)
	ensureIndexesCmd.Flags().BoolVar(&skipBucket, "skip-bucket", false, "only create database indexes")
}
