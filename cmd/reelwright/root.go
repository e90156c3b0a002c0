package main

import (
	"github.com/spf13/cobra"

	"github.com/reelwright/reelwright/internal/config"
)

// commandContext loads configuration once, on first use.
type commandContext struct {
	configFlag *string
	cfg        *config.EnvConfig
}

func (c *commandContext) config() (*config.EnvConfig, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.New(*c.configFlag)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := &commandContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "reelwright",
		Short:         "Compose short-form video timelines for social platforms",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newPlatformsCommand())
	rootCmd.AddCommand(newTemplatesCommand())
	rootCmd.AddCommand(newScheduleCommand())

	return rootCmd
}
