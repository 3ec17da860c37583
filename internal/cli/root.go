// Package cli provides the command-line interface for the converter.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/etl/internal/config"
	"github.com/JonMunkholm/etl/internal/core"
	"github.com/JonMunkholm/etl/internal/logging"
	"github.com/JonMunkholm/etl/internal/store"
)

// Version information (set at build time).
var Version = "0.1.0"

const defaultEnvFile = ".env"

// envKey is used to store the command environment in context.
type envKey struct{}

// env is what every subcommand needs after configuration is loaded.
type env struct {
	cfg  *config.Config
	open func(context.Context) (core.Store, error)
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		envFile string
		dbURL   string
		driver  string
	)

	rootCmd := &cobra.Command{
		Use:   "etl",
		Short: "Move tabular data between SQL tables, CSV and JSON",
		Long: `etl exports query results as CSV or JSON, imports CSV and JSON files
into existing tables, creates typed tables from column data, and generates
synthetic people for seeding test tables.

Connection and defaults come from the environment (or a .env file):
DB_DRIVER, DATABASE_URL, LOG_LEVEL, LOG_FORMAT, IDENTITY_EMAIL_DOMAIN, ...`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			if err := loadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
				return err
			}
			if dbURL != "" {
				os.Setenv("DATABASE_URL", dbURL)
			}
			if driver != "" {
				os.Setenv("DB_DRIVER", driver)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			slog.Debug("configuration loaded", "config", cfg.String())

			ctx := context.WithValue(cmd.Context(), envKey{}, &env{
				cfg:  cfg,
				open: store.Opener(cfg.Database),
			})
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "database path or URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "store driver: sqlite or postgres (overrides DB_DRIVER)")

	_ = rootCmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sqlite", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newLoadColumnsCommand())
	rootCmd.AddCommand(newGenerateCommand())

	return rootCmd
}

// Execute runs the root command and prints a user-facing message on failure.
func Execute(ctx context.Context, stderr io.Writer, args []string) error {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err, "kind", core.KindFromError(err))
		if core.IsUserFacing(err) {
			fmt.Fprintf(stderr, "Error: %s\n", core.FormatUserError(err))
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// loadEnvFile overloads the environment from path. A missing default file
// is not an error; a missing file the user named is.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Overload(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func getEnv(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	return nil
}

// openStore opens a fresh store; core operations close it themselves.
func openStore(cmd *cobra.Command) (core.Store, error) {
	e := getEnv(cmd.Context())
	if e == nil {
		return nil, errors.New("configuration not loaded")
	}
	s, err := e.open(cmd.Context())
	if err != nil {
		return nil, core.NewError(core.KindStore, "open store", e.cfg.Database.Driver, err)
	}
	return s, nil
}
