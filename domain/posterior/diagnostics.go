package posterior

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RhatThreshold is the conventional cutoff above which a parameter is flagged
// as not converged.
const RhatThreshold = 1.1

// GelmanRubin computes the split-chain potential scale reduction factor.
// Each chain is split in half so within-chain trend shows up as between-chain
// disagreement. Returns 1 when variation is degenerate (constant draws).
func GelmanRubin(series [][]float64) float64 {
	var seqs [][]float64
	for _, s := range series {
		if len(s) < 4 {
			return math.NaN()
		}
		half := len(s) / 2
		seqs = append(seqs, s[:half], s[half:half*2])
	}

	n := len(seqs[0])
	for _, s := range seqs {
		if len(s) < n {
			n = len(s)
		}
	}

	means := make([]float64, len(seqs))
	vars := make([]float64, len(seqs))
	for i, s := range seqs {
		means[i] = stat.Mean(s[:n], nil)
		vars[i] = stat.Variance(s[:n], nil)
	}

	w := stat.Mean(vars, nil)
	if w <= 0 {
		return 1
	}
	b := float64(n) * stat.Variance(means, nil)
	varPlus := float64(n-1)/float64(n)*w + b/float64(n)
	return math.Sqrt(varPlus / w)
}

// EffectiveSampleSize estimates the number of independent draws behind the
// pooled sample, using chain-averaged autocorrelations truncated at the first
// negative lag.
func EffectiveSampleSize(series [][]float64) float64 {
	m := len(series)
	if m == 0 {
		return 0
	}
	n := len(series[0])
	for _, s := range series {
		if len(s) < n {
			n = len(s)
		}
	}
	if n < 4 {
		return float64(m * n)
	}

	maxLag := n / 2
	if maxLag > 200 {
		maxLag = 200
	}

	sum := 0.0
	for t := 1; t < maxLag; t++ {
		rho := 0.0
		for _, s := range series {
			rho += autocorr(s[:n], t)
		}
		rho /= float64(m)
		if rho < 0 {
			break
		}
		sum += rho
	}

	ess := float64(m*n) / (1 + 2*sum)
	if ess > float64(m*n) {
		ess = float64(m * n)
	}
	return ess
}

func autocorr(s []float64, lag int) float64 {
	n := len(s)
	mean := stat.Mean(s, nil)
	v := stat.Variance(s, nil)
	if v <= 0 {
		return 0
	}
	acc := 0.0
	for i := 0; i+lag < n; i++ {
		acc += (s[i] - mean) * (s[i+lag] - mean)
	}
	return acc / (float64(n-1) * v)
}
