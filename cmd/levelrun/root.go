package main

import (
	"github.com/spf13/cobra"

	"github.com/levelplan/levelplan/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "levelrun",
	Short:         "Play tick-driven level plans headlessly",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default $"+config.EnvPath+" or "+config.DefaultPath+")")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flag, _ := cmd.Flags().GetString("config")
	return config.Load(config.Path(flag))
}
