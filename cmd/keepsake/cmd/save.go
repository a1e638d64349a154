package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newSaveCmd(a *app) *cobra.Command {
	var (
		overwrite bool
		file      string
	)

	saveCmd := &cobra.Command{
		Use:   "save <name> [json]",
		Short: "Save a record",
		Long: `Save a JSON payload under a record name. The payload is re-encoded
with the configured codec before it is written.

The payload comes from the second argument, or from --file (use - for stdin).

Examples:
  keepsake save profile1 '{"level":5}'
  keepsake save profile1 --file profile.json --overwrite
  cat profile.json | keepsake save profile1 --file -`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPayload(cmd, args, file)
			if err != nil {
				return err
			}

			var payload any
			if err := json.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("payload is not valid JSON: %w", err)
			}

			s, err := a.store()
			if err != nil {
				return err
			}
			if err := s.Save(args[0], payload, overwrite); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved record '%s'\n", args[0])
			return nil
		},
	}

	saveCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing record")
	saveCmd.Flags().StringVarP(&file, "file", "f", "", "Read the payload from a file (- for stdin)")
	return saveCmd
}

func readPayload(cmd *cobra.Command, args []string, file string) ([]byte, error) {
	switch {
	case len(args) == 2 && file != "":
		return nil, errors.New("pass the payload as an argument or with --file, not both")
	case len(args) == 2:
		return []byte(args[1]), nil
	case file == "-":
		return io.ReadAll(cmd.InOrStdin())
	case file != "":
		return os.ReadFile(file)
	default:
		return nil, errors.New("no payload given")
	}
}
