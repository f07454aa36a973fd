package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cardbinder/cardbinder/internal/export"
	"github.com/cardbinder/cardbinder/internal/repository"
)

func newExportCmd() *cobra.Command {
	var dbPath string
	var parquetPath string
	var reportPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the card catalog to Parquet and YAML",
		Long: `Exports the persisted card catalog as a Parquet dataset, optionally
alongside a YAML summary report (counts by rarity, series, and sale status).`,
		Example: `  # Export the catalog
  cardbinder export --parquet catalog.parquet

  # Export with a summary report
  cardbinder export --parquet catalog.parquet --report catalog.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if parquetPath == "" && reportPath == "" {
				return fmt.Errorf("nothing to do: pass --parquet and/or --report")
			}

			repo, err := repository.New(dbPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			cards, err := repo.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
			slog.Info("Loaded catalog", "cards", len(cards))

			if parquetPath != "" {
				if err := export.WriteParquet(parquetPath, cards); err != nil {
					return err
				}
				slog.Info("Wrote parquet export", "path", parquetPath)
			}
			if reportPath != "" {
				if err := export.SaveReportYAML(reportPath, cards); err != nil {
					return err
				}
				slog.Info("Wrote summary report", "path", reportPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "data/cards.db", "Path to the card catalog database")
	cmd.Flags().StringVar(&parquetPath, "parquet", "", "Write the catalog to this Parquet file")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a YAML summary report to this file")

	return cmd
}
