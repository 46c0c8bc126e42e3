package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jitscript/internal/config"
)

// loadConfig reads --config or the nearest jitscript.toml, then applies the
// persistent flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return config.Config{}, err
	}

	if flags.Changed("max-diagnostics") {
		if cfg.Diagnostics.Max, err = flags.GetInt("max-diagnostics"); err != nil {
			return config.Config{}, err
		}
		if cfg.Diagnostics.Max <= 0 {
			return config.Config{}, fmt.Errorf("--max-diagnostics must be positive")
		}
	}
	if flags.Changed("trace-level") {
		if cfg.Trace.Level, err = flags.GetString("trace-level"); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed("trace-mode") {
		if cfg.Trace.Mode, err = flags.GetString("trace-mode"); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed("trace") {
		if cfg.Trace.Output, err = flags.GetString("trace"); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// libraryFlags merges configured libraries with --library, config first.
func libraryFlags(cmd *cobra.Command, cfg config.Config) ([]string, error) {
	extra, err := cmd.Flags().GetStringSlice("library")
	if err != nil {
		return nil, err
	}
	return append(cfg.Libraries(), extra...), nil
}

// cacheFlag returns --cache if set, else the configured cache path.
func cacheFlag(cmd *cobra.Command, cfg config.Config) (string, error) {
	if cmd.Flags().Changed("cache") {
		return cmd.Flags().GetString("cache")
	}
	return cfg.Resolve(cfg.Ops.Cache), nil
}
