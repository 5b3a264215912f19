package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"r0fit/domain/epi"
	"r0fit/domain/run"
	"r0fit/internal/errors"
)

// WritePredicted writes per-observation fitted values with 95% intervals.
// Columns: department, week, observed, fitted, lower, upper (log scale).
func WritePredicted(path string, predicted []run.PredictedValue) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"department", "week", "observed", "fitted", "lower", "upper"}); err != nil {
		return errors.Wrapf(err, "write header of %s", path)
	}
	for _, p := range predicted {
		rec := []string{
			strconv.Itoa(p.Department),
			strconv.Itoa(p.Week),
			formatFloat(p.Observed),
			formatFloat(p.Fitted),
			formatFloat(p.Lower),
			formatFloat(p.Upper),
		}
		if err := w.Write(rec); err != nil {
			return errors.Wrapf(err, "write %s", path)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteR0 writes per-department reproduction number estimates with 95%
// credible intervals; the aggregate estimate is written as department 0.
func WriteR0(path string, estimates []epi.Estimate, aggregate *epi.Estimate) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"department", "r0", "lower", "upper"}); err != nil {
		return errors.Wrapf(err, "write header of %s", path)
	}
	rows := estimates
	if aggregate != nil {
		rows = append([]epi.Estimate{*aggregate}, estimates...)
	}
	for _, e := range rows {
		rec := []string{
			strconv.Itoa(e.Department),
			formatFloat(e.Point),
			formatFloat(e.Lower),
			formatFloat(e.Upper),
		}
		if err := w.Write(rec); err != nil {
			return errors.Wrapf(err, "write %s", path)
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
