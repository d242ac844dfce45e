package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/pmwatch/internal/credential"
	"github.com/nhle/pmwatch/internal/model"
	"github.com/nhle/pmwatch/internal/ui/configform"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set the backend, polling and read-state options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		values := configform.FromConfig(cfg)
		if err := configform.Build(&values).RunWithContext(cmd.Context()); err != nil {
			return fmt.Errorf("configuration form: %w", err)
		}

		if err := values.Apply(cfg); err != nil {
			return err
		}
		if err := model.SaveConfig(configPath, cfg); err != nil {
			return err
		}
		logger.Info("config saved", zap.String("path", configPath))

		if err := values.SaveToken(credential.Set, credential.Delete, credential.TokenKey); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", configPath)
		return nil
	},
}
