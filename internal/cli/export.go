package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/etl/internal/core"
)

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a query result as CSV or JSON",
	}
	cmd.AddCommand(newExportCSVCommand())
	cmd.AddCommand(newExportJSONCommand())
	return cmd
}

func newExportCSVCommand() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "csv QUERY",
		Short: "Export a query result as CSV",
		Example: `  etl export csv 'SELECT * FROM people'
  etl export csv 'SELECT id, name FROM people' -o people.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			out, err := core.ResultToCSV(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd, outPath, out)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newExportJSONCommand() *cobra.Command {
	var (
		outPath string
		shape   string
		key     string
	)

	cmd := &cobra.Command{
		Use:   "json QUERY",
		Short: "Export a query result as JSON",
		Long: `Export a query result as JSON.

The list shape is an array of records. The keyed shape is an object keyed by
one column's values, each value a record of the remaining columns. Without
--key the columns in EXPORT_KEY_COLUMNS are tried in order.`,
		Example: `  etl export json 'SELECT * FROM people'
  etl export json 'SELECT * FROM people' --shape keyed --key id`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getEnv(cmd.Context()).cfg
			if shape == "" {
				shape = cfg.Export.Shape
			}
			parsed, err := core.ParseShape(shape)
			if err != nil {
				return err
			}

			candidates := []string{key}
			if parsed == core.ShapeKeyed && key == "" {
				candidates = cfg.Export.KeyColumns
			}

			var out string
			for _, candidate := range candidates {
				s, err := openStore(cmd)
				if err != nil {
					return err
				}
				out, err = core.ResultToJSON(cmd.Context(), s, args[0],
					core.JSONOptions{Shape: parsed, KeyColumn: candidate})
				if err == nil {
					return writeOutput(cmd, outPath, out)
				}
				// only a missing key column moves on to the next candidate
				if core.MapError(err).Code != "ARG001" || candidate == candidates[len(candidates)-1] {
					return err
				}
			}
			return fmt.Errorf("no key column configured for keyed export")
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().StringVar(&shape, "shape", "", "JSON shape: list or keyed (default from EXPORT_JSON_SHAPE)")
	cmd.Flags().StringVar(&key, "key", "", "key column for the keyed shape")

	_ = cmd.RegisterFlagCompletionFunc("shape", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"list", "keyed"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// writeOutput writes text to path, or to stdout when path is empty. The file
// is written in one call so a failed export never leaves a partial file.
func writeOutput(cmd *cobra.Command, path, text string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return core.NewError(core.KindIO, "write output", path, err)
	}
	return nil
}
