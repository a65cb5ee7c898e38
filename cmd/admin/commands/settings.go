package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasuku-app/tasuku/internal/config"
	"github.com/tasuku-app/tasuku/internal/database"
	"github.com/tasuku-app/tasuku/internal/models"
)

// NewSettingsCmd creates the settings command with get and set subcommands
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage per-user dashboard settings",
	}

	cmd.AddCommand(newSettingsGetCmd())
	cmd.AddCommand(newSettingsSetCmd())

	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <user-id>",
		Short: "Show a user's dashboard column labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettingsRepo(func(ctx context.Context, repo *database.SettingsRepository) error {
				settings, err := repo.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to get settings: %w", err)
				}
				fmt.Printf("User: %s\n", settings.UserID)
				fmt.Printf("  Column 1: %s\n", settings.ColumnLabel1)
				fmt.Printf("  Column 2: %s\n", settings.ColumnLabel2)
				return nil
			})
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <user-id> <column-label-1> <column-label-2>",
		Short: "Set a user's dashboard column labels",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSettingsRepo(func(ctx context.Context, repo *database.SettingsRepository) error {
				settings := &models.UserSettings{
					UserID:       args[0],
					ColumnLabel1: args[1],
					ColumnLabel2: args[2],
				}
				if err := repo.Upsert(ctx, settings); err != nil {
					return fmt.Errorf("failed to save settings: %w", err)
				}
				fmt.Println("Settings saved")
				return nil
			})
		},
	}
}

func withSettingsRepo(fn func(ctx context.Context, repo *database.SettingsRepository) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	return fn(context.Background(), database.NewSettingsRepository(db))
}
