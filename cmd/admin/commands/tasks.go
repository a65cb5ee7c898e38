package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasuku-app/tasuku/internal/config"
	"github.com/tasuku-app/tasuku/internal/database"
	"github.com/tasuku-app/tasuku/internal/models"
	"github.com/tasuku-app/tasuku/internal/render"
)

// NewTasksCmd creates the tasks command
func NewTasksCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List active tasks",
		Long:  "List active tasks across all users, or for a single user with --user",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			taskRepo := database.NewTaskRepository(db)
			ctx := context.Background()

			var tasks []*models.Task
			if userID != "" {
				tasks, err = taskRepo.ListActive(ctx, userID)
			} else {
				tasks, err = taskRepo.ListActiveAllUsers(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}

			if len(tasks) == 0 {
				fmt.Println("No active tasks")
				return nil
			}

			grouped := make(map[string][]*models.Task)
			var order []string
			for _, t := range tasks {
				if _, seen := grouped[t.UserID]; !seen {
					order = append(order, t.UserID)
				}
				grouped[t.UserID] = append(grouped[t.UserID], t)
			}

			for _, uid := range order {
				fmt.Printf("User: %s\n", uid)
				for _, t := range render.Sort(grouped[uid]) {
					fmt.Printf("  [%s] %s (%s, %s)\n", t.Priority, t.Title, t.Status, t.ID)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Limit to a single user ID")

	return cmd
}
