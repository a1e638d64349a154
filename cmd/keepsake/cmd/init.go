/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/keepsake/pkg/config"
)

func newInitCmd(a *app) *cobra.Command {
	var force, rekey bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a keepsake configuration file",
		Long: `Write a configuration file for the given data directory and codec.

Sealed codecs (sealed-json, sealed-yaml, sealed-msgpack) get a freshly
generated passphrase stored in the configuration file. Rewriting an existing
configuration with --force keeps its passphrase, so records sealed with it
stay readable; --rekey generates a new one instead.

Examples:
  keepsake init --data-dir ./saves
  keepsake init --data-dir ./saves --codec sealed-msgpack --ext sav
  keepsake init --force --rekey`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ConfigExists(a.configPath) && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", a.configPath)
			}

			flags := cmd.Flags()
			opts := config.BootstrapOptions{
				DataDir:    a.config.DataDir,
				Codec:      a.config.Codec,
				Passphrase: a.config.Security.Passphrase,
				Rekey:      rekey,
			}
			// an explicit --ext wins; otherwise a rewrite keeps the extension
			// its records already use unless the codec changes
			if flags.Changed("ext") || (a.loaded && !flags.Changed("codec")) {
				opts.Extension = a.config.Extension
			}

			cfg, err := config.BootstrapConfig(a.configPath, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rekey && opts.Passphrase != "" {
				fmt.Fprintln(out, "Warning: generated a new passphrase; records sealed with the old one can no longer be loaded")
			}
			fmt.Fprintf(out, "Wrote configuration to %s\n", a.configPath)
			fmt.Fprintf(out, "Data directory: %s\n", cfg.DataDir)
			fmt.Fprintf(out, "Codec: %s (.%s)\n", cfg.Codec, cfg.Extension)
			if p := cfg.Security.Passphrase; p != "" {
				fmt.Fprintf(out, "Passphrase: %s...\n", p[:min(8, len(p))])
			}
			return nil
		},
	}

	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	initCmd.Flags().BoolVar(&rekey, "rekey", false, "Generate a new passphrase for sealed codecs")
	return initCmd
}
