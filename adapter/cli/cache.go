package cli

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/edusense/edusense/internal/shared/infrastructure/cache"
	"github.com/edusense/edusense/pkg/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the report cache",
}

// cacheClearCmd drops all cached priority and workload reports so the
// next request recomputes them. Only meaningful against Redis; the
// in-memory cache lives and dies with its process.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all cached reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cfg.HasRedis() {
			fmt.Println("No Redis configured; the in-memory cache expires on its own.")
			return nil
		}

		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		store := cache.NewRedisCache(client, logger)
		if err := store.DeleteByPrefix(ctx, "reports:"); err != nil {
			return fmt.Errorf("failed to clear report cache: %w", err)
		}

		fmt.Println("Report cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
