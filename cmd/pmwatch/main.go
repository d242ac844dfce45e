package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/pmwatch/internal/backend"
	"github.com/nhle/pmwatch/internal/credential"
	"github.com/nhle/pmwatch/internal/logging"
	"github.com/nhle/pmwatch/internal/model"
)

var (
	configPath string
	logLevel   string

	cfg    *model.AppConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "pmwatch",
	Short:         "Watch project-management notifications from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = model.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger.Debug("config loaded", zap.String("path", configPath), zap.String("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "path to the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(rowsCmd)
	rootCmd.AddCommand(unreadCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(configureCmd)
}

// newClient builds the backend client from the loaded config and the
// stored token.
func newClient() (*backend.Client, error) {
	token, err := credential.Token()
	if err != nil {
		return nil, fmt.Errorf("loading backend token: %w", err)
	}
	return backend.NewClient(cfg.Backend.BaseURL,
		backend.WithToken(token),
		backend.WithNotificationsPath(cfg.Backend.NotificationsPath),
		backend.WithTimeout(cfg.Backend.Timeout()),
		backend.WithLogger(logger),
	), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
