package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/keepsake/pkg/query"
)

func newFindCmd(a *app) *cobra.Command {
	var (
		where    string
		field    string
		operator string
		value    string
		output   string
	)

	findCmd := &cobra.Command{
		Use:   "find",
		Short: "Find records matching a predicate",
		Long: `Scan every record and print those matching a predicate.

Use --where for an expression evaluated against the record fields, or
--field/--op/--value for a single comparison. The value is read as a JSON
literal when it parses as one, and as a plain string otherwise.

Examples:
  keepsake find --where 'level >= 5 && class == "mage"'
  keepsake find --field stats.hp --op '>' --value 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (where == "") == (field == "") {
				return errors.New("pass exactly one of --where or --field")
			}

			s, err := a.store()
			if err != nil {
				return err
			}
			engine := query.NewScanEngine(s, a.container.Logger())

			var it query.QueryIterator
			if where != "" {
				it, err = engine.ExecuteExpr(cmdContext(cmd), where)
			} else {
				it, err = engine.ExecuteQuery(cmdContext(cmd), query.FieldQuery{
					Field:    field,
					Operator: operator,
					Value:    parseValue(value),
				})
			}
			if err != nil {
				return err
			}
			defer it.Close()

			out := cmd.OutOrStdout()
			count := 0
			for it.Next() {
				res := it.Result()
				if output == "names" {
					fmt.Fprintln(out, res.Name)
				} else if err := writeValue(out, "json", map[string]any{
					"name":   res.Name,
					"record": normalize(map[string]any(res.Record)),
				}); err != nil {
					return err
				}
				count++
			}
			if output != "names" {
				fmt.Fprintf(out, "Found %d record(s)\n", count)
			}
			return nil
		},
	}

	flags := findCmd.Flags()
	flags.StringVar(&where, "where", "", "Boolean expression over record fields")
	flags.StringVar(&field, "field", "", "Field to compare (dotted path)")
	flags.StringVar(&operator, "op", "=", "Comparison operator: =, !=, >, <, >=, <=")
	flags.StringVar(&value, "value", "", "Value to compare against")
	flags.StringVarP(&output, "output", "o", "json", "Output: json or names")
	return findCmd
}

func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}
