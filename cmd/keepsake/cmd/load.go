package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoadCmd(a *app) *cobra.Command {
	var output string

	loadCmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Load a record and print it",
		Long: `Load a record, decode it with the configured codec and print it.

Examples:
  keepsake load profile1
  keepsake load profile1 -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}

			var record any
			if err := s.Load(args[0], &record); err != nil {
				return err
			}
			return writeValue(cmd.OutOrStdout(), output, normalize(record))
		},
	}

	loadCmd.Flags().StringVarP(&output, "output", "o", "json", "Output format: json or yaml")
	return loadCmd
}

// normalize turns the map[any]any values some decoders produce into
// map[string]any so they can be printed as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalize(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalize(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalize(e)
		}
		return t
	default:
		return v
	}
}
