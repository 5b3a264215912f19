// Package report renders a run manifest as a Markdown document.
package report

import (
	"fmt"
	"math"
	"strings"

	"r0fit/domain/posterior"
	"r0fit/domain/run"
)

// Render produces the Markdown report for a completed run.
func Render(result *run.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Run %s\n\n", result.ID)
	fmt.Fprintf(&b, "- Model: `%s`\n", result.Model)
	fmt.Fprintf(&b, "- Created: %s\n", result.CreatedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Sampler: %d chains, burn-in %d, %d samples, thin %d, seed %d\n",
		result.Config.Chains, result.Config.BurnIn, result.Config.Samples, result.Config.Thin, result.Config.Seed)
	fmt.Fprintf(&b, "- Bayesian p-value: **%.3f** (well-fit models sit near 0.5)\n", result.PValue)
	if result.Converged {
		b.WriteString("- Convergence: all monitored parameters have R-hat <= 1.1\n")
	} else {
		b.WriteString("- Convergence: **NOT CONVERGED** — at least one R-hat exceeds 1.1\n")
	}
	b.WriteString("\n")

	if len(result.R0) > 0 {
		b.WriteString("## Reproduction numbers\n\n")
		b.WriteString("| Department | R0 | 2.5% | 97.5% |\n")
		b.WriteString("|---|---|---|---|\n")
		if result.R0Aggregate != nil {
			fmt.Fprintf(&b, "| aggregate | %.3f | %.3f | %.3f |\n",
				result.R0Aggregate.Point, result.R0Aggregate.Lower, result.R0Aggregate.Upper)
		}
		for _, e := range result.R0 {
			fmt.Fprintf(&b, "| %d | %.3f | %.3f | %.3f |\n", e.Department, e.Point, e.Lower, e.Upper)
		}
		b.WriteString("\n")
	}

	if len(result.ClimateEffects) > 0 {
		b.WriteString("## Climate effects (posterior means, sum to zero)\n\n")
		b.WriteString("| Class | Effect |\n")
		b.WriteString("|---|---|\n")
		for k, a := range result.ClimateEffects {
			fmt.Fprintf(&b, "| %d | %+.4f |\n", k+1, a)
		}
		b.WriteString("\n")
	}

	if len(result.Summaries) > 0 {
		b.WriteString("## Parameter summaries\n\n")
		b.WriteString("| Parameter | Mean | SD | 2.5% | Median | 97.5% | R-hat | ESS |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|\n")
		for _, s := range result.Summaries {
			fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f | %.4f | %.4f | %s | %.0f |\n",
				s.Name, s.Mean, s.SD, s.Lower, s.Median, s.Upper, formatRhat(s.Rhat), s.ESS)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func formatRhat(rhat float64) string {
	if math.IsNaN(rhat) {
		return "-"
	}
	if rhat > posterior.RhatThreshold {
		return fmt.Sprintf("**%.3f**", rhat)
	}
	return fmt.Sprintf("%.3f", rhat)
}
