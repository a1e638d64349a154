/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ssargent/keepsake/pkg/config"
	"github.com/ssargent/keepsake/pkg/di"
	"github.com/ssargent/keepsake/pkg/store"
)

// app carries the state shared by every subcommand of one invocation
type app struct {
	configPath string
	dataDir    string
	codecName  string
	extension  string
	verbose    bool

	config    *config.Config
	loaded    bool // config came from a file
	container *di.Container
}

// NewRootCmd builds the keepsake command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "keepsake",
		Short: "keepsake - named record store",
		Long: `keepsake stores named records as individual files in a single
directory, one file per record, encoded by a configurable codec.

Examples:
  keepsake save profile1 '{"level":5}'
  keepsake load profile1
  keepsake find --where 'level >= 5'`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.container != nil {
				a.container.Close()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", config.GetDefaultConfigPath(), "Path to the config file")
	flags.StringVarP(&a.dataDir, "data-dir", "d", "", "Directory holding the record files")
	flags.StringVar(&a.codecName, "codec", "", "Record codec: json, yaml, msgpack or sealed-<codec>")
	flags.StringVar(&a.extension, "ext", "", "Record file extension")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newInitCmd(a),
		newSaveCmd(a),
		newLoadCmd(a),
		newDeleteCmd(a),
		newDeleteAllCmd(a),
		newListCmd(a),
		newFindCmd(a),
		newWatchCmd(a),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setup resolves configuration (file, then flags) and builds the container
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if config.ConfigExists(a.configPath) {
		loaded, err := config.LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		a.loaded = true
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	if flags.Changed("codec") {
		cfg.Codec = a.codecName
	}
	if flags.Changed("ext") {
		cfg.Extension = a.extension
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	a.config = cfg

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.container = di.NewContainer(logger)
	return nil
}

// store returns the configured record store
func (a *app) store() (*store.Store, error) {
	s, err := a.container.Store(a.config)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	return s, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, err
		}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	return config.Build()
}
