package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"r0fit/adapters/csvfile"
	"r0fit/adapters/mcmc"
	"r0fit/app"
	"r0fit/internal/errors"
	"r0fit/internal/report"
)

func newAnovaCmd() *cobra.Command {
	var outputDir string
	var store bool

	cmd := &cobra.Command{
		Use:   "anova [climate-file]",
		Short: "Fit the one-way ANOVA of estimated R0 on climate class",
		Long: `Anova reads per-department records (department, r0, climate) from a CSV
file and fits y ~ Normal(a0 + a[climate], sigma) with a sum-to-zero
constraint on the climate effects.

Example: r0fit anova climate.csv --samples 4000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, samplerCfg, err := loadConfig()
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = cfg.Output.Dir
			}

			records, err := csvfile.NewReader().ReadClimate(args[0])
			if err != nil {
				return err
			}

			svc := app.NewAnovaService(mcmc.New(logger()), logger())
			result, err := svc.Fit(cmd.Context(), records, samplerCfg)
			if err != nil {
				return err
			}

			if err := os.WriteFile(filepath.Join(outputDir, "anova_report.md"), []byte(report.Render(result)), 0o644); err != nil {
				return errors.Wrap(err, "write anova_report.md")
			}

			if store {
				if err := storeResult(cmd.Context(), cfg.Database.URL, result); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: p-value %.3f, %d climate classes\n",
				result.ID, result.PValue, len(result.ClimateEffects))
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for anova_report.md")
	cmd.Flags().BoolVar(&store, "store", false, "persist the run manifest to the database")
	return cmd
}
