package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a record",
		Long: `Delete a record from the store. Deleting a record that does not
exist is not an error.

Example:
  keepsake delete profile1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			if err := s.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted record '%s'\n", args[0])
			return nil
		},
	}
}

func newDeleteAllCmd(a *app) *cobra.Command {
	var yes bool

	deleteAllCmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every file in the data directory",
		Long: `Delete every regular file directly inside the data directory,
whatever its extension. The directory itself is kept.

Example:
  keepsake delete-all --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all records without --yes")
			}
			s, err := a.store()
			if err != nil {
				return err
			}
			if err := s.DeleteAll(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted all records in %s\n", s.Root())
			return nil
		},
	}

	deleteAllCmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion of every record")
	return deleteAllCmd
}
