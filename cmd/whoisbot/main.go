package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/m3rciful/whoisbot/bot/app"
	"github.com/m3rciful/whoisbot/core/buildinfo"
	corecmd "github.com/m3rciful/whoisbot/core/cmd"
	coreconfig "github.com/m3rciful/whoisbot/core/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "whoisbot",
		Short:         "Telegram bot that shows account information",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return corecmd.Run(corecmd.Options{
				ConfigPath: configPath,
				LoadConfig: coreconfig.Load,
				Bootstrap:  app.Bootstrap,
			})
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default: $CONFIG_PATH)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "whoisbot %s (commit %s", buildinfo.Version, buildinfo.Commit)
			if buildinfo.Date != "" {
				fmt.Fprintf(cmd.OutOrStdout(), ", built %s", buildinfo.Date)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ")")
		},
	})
	return root
}
