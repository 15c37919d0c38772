// Command vaultbot runs the Telegram file catalog bot.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/m3rciful/vaultbot/core/buildinfo"
	corecmd "github.com/m3rciful/vaultbot/core/cmd"
	"github.com/m3rciful/vaultbot/core/database"
	"github.com/m3rciful/vaultbot/internal/app"
	"github.com/m3rciful/vaultbot/internal/config"
)

const defaultConfigPath = "config.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "vaultbot",
	Short:         "Telegram file catalog bot backed by a storage channel",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := corecmd.ResolveConfigPath(configPath, "", defaultConfigPath)
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		return database.RunMigrations(cfg.Database)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to config.yaml (falls back to $CONFIG_PATH, then ./"+defaultConfigPath+")")
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func serve() error {
	return corecmd.Run(corecmd.Options{
		ConfigPath:        configPath,
		DefaultConfigPath: defaultConfigPath,
		LoadConfig:        app.LoadConfig,
		Bootstrap:         app.Bootstrap,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
