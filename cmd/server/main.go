// Command server runs the diabetes prediction HTTP API and its maintenance
// tasks: migrations, reference data seeding, one-off predictions and history
// export.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/diabetes-prediction-engine/internal/config"
	"github.com/diabetes-prediction-engine/internal/domain"
)

// app carries what every subcommand needs.
type app struct {
	configPath string
	config     *config.Manager
	logger     *logrus.Logger
}

func main() {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()

	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "diabetes-engine",
		Short:         "Diabetes subtype prediction engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a config file (default: search ./, ./config, /etc/diabetes-prediction-engine)")

	rootCmd.AddCommand(a.serveCmd())
	rootCmd.AddCommand(a.migrateCmd())
	rootCmd.AddCommand(a.seedCmd())
	rootCmd.AddCommand(a.predictCmd())
	rootCmd.AddCommand(a.exportCmd())
	rootCmd.AddCommand(a.importCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// load reads and validates configuration and builds the logger.
func (a *app) load() error {
	manager, err := config.NewManagerFromFile(a.configPath)
	if err != nil {
		return err
	}
	if err := manager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	a.config = manager
	a.logger = newLogger(manager.GetConfig().Logging)
	return nil
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
