package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mushroom-datastore/internal/app"
	"mushroom-datastore/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "datastore",
	Short: "Stores mushroom farm measurements parsed from XPS documents",
	Long: `The datastore fetches parsed XPS documents from the parser service,
stores their measurement rows and serves them over HTTP and gRPC.
Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC servers",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := app.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("datastore version %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	application, cleanup, err := app.InitializeApp(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer cleanup()

	if err := application.Run(cmd.Context()); err != nil {
		return fmt.Errorf("application terminated with error: %w", err)
	}
	return nil
}
