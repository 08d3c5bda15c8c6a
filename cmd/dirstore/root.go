package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/arthur-debert/dirstore/dirstore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "dirstore",
	Short: "dirstore CLI - filesystem-mapped document store",
	Long: `dirstore manages JSON document databases that live directly on the
filesystem: the database is a directory, each collection is a subdirectory,
and each document is a JSON file named by its id.

The database path comes from --db, the DIRSTORE_DB environment variable, or
a dirstore.yaml config file, in that order of precedence.

Examples:
  # Create a database and a collection
  dirstore --db ./data init
  dirstore --db ./data collections create users

  # Store and query documents
  dirstore --db ./data put users '{"_id":"u1","name":"Ann"}'
  dirstore --db ./data get users '{"name":"Ann"}'
  dirstore --db ./data ls users`,
	SilenceUsage: true,
}

var (
	// Global flags that apply to all commands
	dbPath   string
	format   string
	logLevel string

	cfg    *viper.Viper
	logger *slog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "database root directory")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "json", "output format: json|yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug|info|warn|error")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(rmCmd)
}

// initConfig layers configuration: flags take precedence over DIRSTORE_*
// environment variables, which take precedence over an optional
// dirstore.yaml in the working directory.
func initConfig() {
	cfg = viper.New()
	cfg.SetEnvPrefix("DIRSTORE")
	cfg.AutomaticEnv()

	cfg.SetConfigName("dirstore")
	cfg.SetConfigType("yaml")
	cfg.AddConfigPath(".")
	_ = cfg.ReadInConfig() // missing config file is fine

	_ = cfg.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = cfg.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = cfg.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	logger = initLogging(cfg.GetString("log-level"))
}

// openDB opens the configured database for a command run.
func openDB() (*dirstore.DB, error) {
	path := cfg.GetString("db")
	if path == "" {
		return nil, fmt.Errorf("database path is required (--db, DIRSTORE_DB, or config file)")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	return dirstore.Open(absPath, dirstore.WithLogger(logger))
}
