package main

import (
	"context"
	"fmt"
	"os"

	"realestate-hub/internal/cleanup"
	"realestate-hub/internal/config"
	"realestate-hub/internal/database"
	"realestate-hub/internal/logging"
	"realestate-hub/internal/search"
	"realestate-hub/internal/seed"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "time/tzdata"
)

var configPath string

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "realestate-hub",
		Short: "Real-estate listings and lead management API",
		// no subcommand means serve
		RunE:          runServe,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", getEnv("CONFIG_PATH", "config/app.yaml"), "path to the YAML config file")

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		seedCmd(),
		reindexCmd(),
		cleanupCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds what every command needs: config, logger and the database
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *database.GormDB
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded configuration", zap.String("path", configPath), zap.String("database", cfg.Database.Type))

	db, err := database.Open(cfg.Database)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// searchClient connects to Meilisearch when it is enabled; nil otherwise
func (a *app) searchClient() *search.SearchClient {
	ms := a.cfg.Search.Meilisearch
	if !ms.Enabled {
		a.logger.Info("Meilisearch disabled; /api/search answers from the database")
		return nil
	}
	client := search.NewSearchClient(ms.Host, ms.APIKey, ms.Index)
	if err := client.InitIndex(); err != nil {
		a.logger.Warn("failed to initialize search index", zap.Error(err))
	}
	return client
}

func (a *app) cleanupService(client *search.SearchClient) *cleanup.Service {
	if client == nil {
		return cleanup.NewService(a.db.DB(), nil, a.logger)
	}
	return cleanup.NewService(a.db.DB(), client, a.logger)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}
			a.logger.Info("Schema is up to date")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var file, agentEmail string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample properties for an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return runSeed(cmd.Context(), a, file, agentEmail)
		},
	}
	cmd.Flags().StringVar(&file, "file", "config/seed_properties.yaml", "YAML file with the sample properties")
	cmd.Flags().StringVar(&agentEmail, "agent-email", "", "email of the agent who will own the properties")
	_ = cmd.MarkFlagRequired("agent-email")
	return cmd
}

func reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			client := a.searchClient()
			if client == nil {
				return fmt.Errorf("meilisearch is disabled in %s", configPath)
			}
			properties, err := a.db.AllProperties(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.IndexProperties(properties); err != nil {
				return err
			}
			a.logger.Info("Reindex completed", zap.Int("properties", len(properties)))
			return nil
		},
	}
}

func cleanupCmd() *cobra.Command {
	var dryRun bool
	var retentionDays int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Purge properties soft-deleted longer than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			config := cleanup.CleanupConfig{
				RetentionDays:    a.cfg.Scheduler.RetentionDays,
				MaxDeletionCount: a.cfg.Scheduler.MaxDeletionCount,
				DryRun:           dryRun,
			}
			if retentionDays > 0 {
				config.RetentionDays = retentionDays
			}
			client := a.searchClient()
			config.DeleteFromSearch = client != nil

			result, err := a.cleanupService(client).PhysicallyDelete(cmd.Context(), config)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "target=%d deleted=%d skipped=%d errors=%d dry_run=%v\n",
				result.TargetCount, result.DeletedCount, result.SkippedCount, result.ErrorCount, result.DryRun)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be purged without deleting")
	cmd.Flags().IntVar(&retentionDays, "retention-days", 0, "override the configured retention period")
	return cmd
}

func runSeed(ctx context.Context, a *app, file, agentEmail string) error {
	seedFile, err := seed.LoadFile(file)
	if err != nil {
		return err
	}
	agent, err := a.db.GetUserByEmail(ctx, agentEmail)
	if err != nil {
		return fmt.Errorf("agent %s: %w", agentEmail, err)
	}
	created, err := seedFile.Apply(ctx, a.db, agent.ID)
	if err != nil {
		return err
	}
	a.logger.Info("Seed completed", zap.Int("properties", len(created)), zap.String("agent", agentEmail))
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
