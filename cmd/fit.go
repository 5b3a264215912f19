package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"r0fit/adapters/csvfile"
	"r0fit/adapters/excel"
	"r0fit/adapters/mcmc"
	"r0fit/adapters/postgres"
	"r0fit/app"
	"r0fit/domain/run"
	"r0fit/domain/surveillance"
	"r0fit/internal/errors"
	"r0fit/internal/report"
	"r0fit/internal/testkit"
	"r0fit/ports"
)

func newFitCmd() *cobra.Command {
	var synthetic bool
	var outputDir string
	var store bool

	cmd := &cobra.Command{
		Use:   "fit [observations-file]",
		Short: "Fit the hierarchical R0 model to weekly case counts",
		Long: `Fit reads per-observation records (department, week, cases) from a CSV
file or Excel workbook, fits the hierarchical growth model, and writes
predicted.csv, r0.csv and report.md to the output directory.

Example: r0fit fit cases.csv --chains 3 --samples 4000 --seed 12345`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, samplerCfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = cfg.Output.Dir
			}

			table, err := loadTable(args, synthetic)
			if err != nil {
				return err
			}

			svc := app.NewFitService(mcmc.New(logger()), logger())
			result, err := svc.Fit(cmd.Context(), table, samplerCfg)
			if err != nil {
				return err
			}

			if err := csvfile.WritePredicted(filepath.Join(outputDir, "predicted.csv"), result.Predicted); err != nil {
				return err
			}
			if err := csvfile.WriteR0(filepath.Join(outputDir, "r0.csv"), result.R0, result.R0Aggregate); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(outputDir, "report.md"), []byte(report.Render(result)), 0o644); err != nil {
				return errors.Wrap(err, "write report.md")
			}

			if store {
				if err := storeResult(cmd.Context(), cfg.Database.URL, result); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: p-value %.3f, aggregate R0 %.3f [%.3f, %.3f]\n",
				result.ID, result.PValue, result.R0Aggregate.Point, result.R0Aggregate.Lower, result.R0Aggregate.Upper)
			return nil
		},
	}

	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "fit the built-in synthetic outbreak instead of a file")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for predicted.csv, r0.csv and report.md")
	cmd.Flags().BoolVar(&store, "store", false, "persist the run manifest to the database")
	return cmd
}

func loadTable(args []string, synthetic bool) (*surveillance.Table, error) {
	if synthetic {
		return testkit.GenerateOutbreak(testkit.DefaultOutbreakConfig())
	}
	if len(args) == 0 {
		return nil, errors.InvalidInput("an observations file is required unless --synthetic is set")
	}
	return readerFor(args[0]).ReadObservations(args[0])
}

// readerFor picks the ingestion adapter by file extension.
func readerFor(path string) ports.ObservationReader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return excel.NewReader()
	default:
		return csvfile.NewReader()
	}
}

// storeResult persists a run manifest when a database is configured.
func storeResult(ctx context.Context, dsn string, result *run.Result) error {
	if dsn == "" {
		return errors.ConfigInvalid("--store requires R0FIT_DATABASE_URL")
	}
	repo, err := postgres.Connect(dsn)
	if err != nil {
		return err
	}
	defer repo.Close()
	return repo.Save(ctx, result)
}
