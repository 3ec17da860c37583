package cli

import (
	"encoding/csv"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/etl/internal/core"
	"github.com/JonMunkholm/etl/internal/identity"
)

func newGenerateCommand() *cobra.Command {
	var (
		count  int
		seed   uint64
		domain string
		table  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic people",
		Long: `Generate synthetic people with name, id, username and email columns.

Without --table the people are printed as CSV. With --table they are
inserted into a new table typed from the data.`,
		Example: `  etl generate --count 5
  etl generate --count 100 --seed 42 --table people`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getEnv(cmd.Context()).cfg
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Identity.Seed
			}
			if domain == "" {
				domain = cfg.Identity.EmailDomain
			}

			columns, err := identity.New(seed, domain).People(count)
			if err != nil {
				return err
			}

			if table != "" {
				s, err := openStore(cmd)
				if err != nil {
					return err
				}
				if err := core.CreateTableFromColumns(cmd.Context(), columns, s, table); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d people generated\n", table, count)
				return nil
			}
			return writePeopleCSV(cmd, columns)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of people")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for repeatable output (default from IDENTITY_SEED, 0 = random)")
	cmd.Flags().StringVar(&domain, "domain", "", "email domain (default from IDENTITY_EMAIL_DOMAIN)")
	cmd.Flags().StringVar(&table, "table", "", "create and fill this table instead of printing")
	return cmd
}

func writePeopleCSV(cmd *cobra.Command, columns []core.ColumnData) error {
	w := csv.NewWriter(cmd.OutOrStdout())
	w.UseCRLF = true

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = col.Name
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range columns[0].Values {
		record := make([]string, len(columns))
		for j, col := range columns {
			record[j] = col.Values[i].String()
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
