package main

import (
	"errors"
	"fmt"
	"os"

	"subtool/internal/app"
	"subtool/internal/config"
	"subtool/internal/run"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// External command failures carry their own exit code; the
		// process exit code must match the first failing command.
		var exitErr *run.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "RegenerateEntities").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "subtool",
	Short: "Developer tool for the subscription tracker service",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Create config with defaults
		cfg := config.NewConfig(defaults["base_dir"])

		// Initialize config file
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Read config
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		// Display config
		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Database:      %s\n", cfg.DatabasePath)
		fmt.Printf("Generator:     %s\n", cfg.Generator.Bin)
		fmt.Printf("Entity Dir:    %s\n", cfg.Generator.EntityDir)
		fmt.Printf("Tunnel Client: %s\n", cfg.Tunnel.Bin)
		fmt.Printf("Service Port:  %d\n", cfg.Tunnel.Port)
		fmt.Printf("Funnel Path:   %s\n", cfg.Tunnel.FunnelPath)
		return nil
	},
}

// entities command
var entitiesCmd = &cobra.Command{
	Use:   "entities",
	Short: "Manage generated entity code",
}

var entitiesRegenCmd = &cobra.Command{
	Use:   "regen",
	Short: "Regenerate entity code from the live schema",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RegenerateEntities")
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.RegenerateEntities(cmd.Context())
		if err != nil {
			return fmt.Errorf("regenerating entities: %w", err)
		}

		fmt.Printf("Removed %d stale file(s), entities regenerated\n", removed)
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the service database schema",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("MigrateUp")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.MigrateUp(); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}

		fmt.Println("Database is up to date")
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema version",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("MigrateStatus")
		if err != nil {
			return err
		}
		defer a.Close()

		status, err := a.MigrateStatus()
		if err != nil {
			return err
		}

		if !status.HasVersion {
			fmt.Printf("No schema version (latest available: %d). Run 'subtool db migrate'.\n", status.Latest)
			return nil
		}

		state := "clean"
		if status.Dirty {
			state = "dirty"
		}
		fmt.Printf("Schema version %d of %d (%s)\n", status.Version, status.Latest, state)
		return nil
	},
}

var dbFreshCmd = &cobra.Command{
	Use:   "fresh",
	Short: "Drop everything and re-apply all migrations",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("MigrateFresh")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.MigrateFresh(); err != nil {
			return fmt.Errorf("rebuilding schema: %w", err)
		}

		fmt.Println("Database rebuilt from scratch")
		return nil
	},
}

// expose command
var exposeCmd = &cobra.Command{
	Use:   "expose",
	Short: "Expose the service through the tunnel client",
}

var exposeUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Serve the service port and open the public funnel",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ExposeUp")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.ExposeUp(cmd.Context())
	},
}

var exposeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show funnel status",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ExposeStatus")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.ExposeStatus(cmd.Context())
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// entities subcommands
	entitiesCmd.AddCommand(entitiesRegenCmd)

	// db subcommands
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbFreshCmd)

	// expose subcommands
	exposeCmd.AddCommand(exposeUpCmd)
	exposeCmd.AddCommand(exposeStatusCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(exposeCmd)
}
