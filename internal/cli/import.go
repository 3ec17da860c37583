package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/etl/internal/core"
)

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Insert the rows of a CSV or JSON file into an existing table",
	}
	cmd.AddCommand(newImportCSVCommand())
	cmd.AddCommand(newImportJSONCommand())
	return cmd
}

func newImportCSVCommand() *cobra.Command {
	var unique string

	cmd := &cobra.Command{
		Use:   "csv FILE TABLE",
		Short: "Insert CSV rows into TABLE",
		Long: `Insert CSV rows into TABLE.

The header row must list the table's columns in table order. With --unique,
rows whose value in that column already exists in the table are skipped.`,
		Example: `  etl import csv people.csv people --unique id`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			result, err := core.CSVToTable(cmd.Context(), args[0], s, args[1],
				core.CSVImportOptions{UniqueColumn: unique})
			if err != nil {
				return err
			}
			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&unique, "unique", "", "skip rows whose value in this column is already in the table")
	return cmd
}

func newImportJSONCommand() *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "json FILE TABLE",
		Short: "Insert the records of a keyed JSON object into TABLE",
		Long: `Insert the records of a keyed JSON object into TABLE.

The file must be an object whose values are records, as written by
'etl export json --shape keyed'. The outer keys are not stored. Without
--columns each record's values are inserted in the order they appear.`,
		Example: `  etl import json people.json people --columns id,name`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			result, err := core.JSONToTable(cmd.Context(), args[0], s, args[1], columns)
			if err != nil {
				return err
			}
			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&columns, "columns", nil, "insert these record fields, in this order")
	return cmd
}

func newLoadColumnsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load-columns FILE TABLE",
		Short: "Create TABLE from a JSON object of column arrays",
		Long: `Create TABLE from a JSON object mapping column names to arrays of values,
e.g. {"id": [1, 2], "score": [1.5, 2.5]}. Column types come from the first
value of each column: INTEGER, REAL, or TEXT for anything else.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return core.NewError(core.KindIO, "load columns", "open "+args[0], err)
			}
			defer f.Close()

			columns, err := core.ColumnsFromJSON(core.NewUTF8Reader(f))
			if err != nil {
				return err
			}

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := core.CreateTableFromColumns(cmd.Context(), columns, s, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: created with %d columns\n", args[1], len(columns))
			return nil
		},
	}
}

func printResult(cmd *cobra.Command, r core.ImportResult) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows read, %d inserted", r.Table, r.Rows, r.Inserted)
	if r.Skipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), ", %d skipped", r.Skipped)
	}
	fmt.Fprintln(cmd.OutOrStdout())
}
