// Package main runs the configuration proxy. The serve command exposes the
// flattened configuration type index over HTTP, resolve works offline on a
// snapshot file.
package main

import (
	"os"

	"github.com/configproxy/core/internal/config"
	"github.com/configproxy/core/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	v := config.New()
	var configFile string

	root := &cobra.Command{
		Use:           "configproxy",
		Short:         "Configuration type index proxy for the component server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.BindFlags(v, cmd.Flags(), map[string]string{
				"loglevel":  "log.level",
				"logformat": "log.format",
			}); err != nil {
				return err
			}
			return logging.Setup(v.GetString("log.level"), logging.Format(v.GetString("log.format")), nil)
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file (yaml, json or toml)")
	root.PersistentFlags().String("loglevel", "info", "Console log level")
	root.PersistentFlags().String("logformat", "console", "Log output format (console or json)")

	root.AddCommand(
		newServeCommand(v, &configFile),
		newResolveCommand(),
		newVersionCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("configproxy", version)
		},
	}
}

func loadConfig(v *viper.Viper, cmd *cobra.Command, file string) (*config.Config, error) {
	if err := config.BindFlags(v, cmd.Flags(), map[string]string{
		"bind":     "server.addr",
		"upstream": "upstream.base_url",
		"language": "upstream.language",
		"timeout":  "upstream.timeout",
		"retries":  "upstream.retries",
		"tracing":  "tracing.enabled",
	}); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v, file)
	if err != nil {
		return nil, err
	}
	// the config file may override the log settings applied before it was read
	if err := logging.Setup(cfg.Log.Level, logging.Format(cfg.Log.Format), nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
