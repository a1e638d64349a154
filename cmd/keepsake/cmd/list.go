package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var unsorted bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List record names",
		Long: `List the names of every record carrying the configured extension.

Names are sorted unless --unsorted is given, in which case they are printed
in directory order as they are read.

Example:
  keepsake list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if unsorted {
				for name := range s.List() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			names, err := s.Names()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}

	listCmd.Flags().BoolVar(&unsorted, "unsorted", false, "Print names in directory order")
	return listCmd
}
