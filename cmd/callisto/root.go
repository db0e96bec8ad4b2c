package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/config"
)

// defaultConfigFile is the config path used when --config is not given.
// Commands fall back to built-in defaults when this file is absent; a
// path the user asked for explicitly must exist.
const defaultConfigFile = "config.yaml"

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - compile service for a small lisp-like language",
	Long: `Callisto compiles a small lisp-like expression language into C-style
call expressions.

Beyond one-shot compilation it provides the operational shell a build
pipeline needs:
  - An HTTP compile service with a queryable compilation ledger
  - Watch mode that recompiles sources on change
  - Git-synced source trees for GitOps pipelines
  - Content-addressed output caching

For more information, visit: https://github.com/mercator-hq/callisto`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadCommandConfig loads the shared configuration. fromFile reports
// whether the configuration came from an actual file; when the default
// config path is absent, built-in defaults apply and fromFile is false.
func loadCommandConfig() (cfg *config.Config, fromFile bool, err error) {
	initErr := config.Initialize(cfgFile)
	if initErr == nil {
		if cfg := config.GetConfig(); cfg != nil {
			return cfg, true, nil
		}
		// An earlier failed Initialize consumed the sync.Once.
		return config.NewDefaultConfig(), false, nil
	}
	if cfgFile == defaultConfigFile && errors.Is(initErr, fs.ErrNotExist) {
		return config.NewDefaultConfig(), false, nil
	}
	return nil, false, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", initErr))
}
