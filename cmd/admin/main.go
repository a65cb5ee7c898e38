package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasuku-app/tasuku/cmd/admin/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "tasuku-admin",
		Short: "Operator tool for tasuku",
		Long:  "CLI tool for inspecting tasks and managing user settings",
	}

	rootCmd.AddCommand(commands.NewTasksCmd())
	rootCmd.AddCommand(commands.NewSettingsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
