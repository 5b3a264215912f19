package posterior

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainsFrom(names []string, draws [][][]float64) *Chains {
	return &Chains{Names: names, Draws: draws}
}

func gaussianChains(t *testing.T, nChains, n int, mu, sd float64, seed int64) *Chains {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	draws := make([][][]float64, nChains)
	for c := range draws {
		draws[c] = make([][]float64, n)
		for i := range draws[c] {
			draws[c][i] = []float64{mu + sd*rng.NormFloat64()}
		}
	}
	return chainsFrom([]string{"x"}, draws)
}

func TestChains_SeriesAndPooled(t *testing.T) {
	c := chainsFrom([]string{"a", "b"}, [][][]float64{
		{{1, 10}, {2, 20}},
		{{3, 30}, {4, 40}},
	})

	series, err := c.Series("b")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{10, 20}, {30, 40}}, series)

	pooled, err := c.Pooled("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, pooled)

	_, err = c.Series("missing")
	assert.Error(t, err)

	assert.Equal(t, 4, c.NumDraws())
	assert.Equal(t, 2, c.NumChains())
}

func TestSummarize_KnownDraws(t *testing.T) {
	c := gaussianChains(t, 2, 4000, 5, 2, 1)
	summaries, err := c.Summarize(nil)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "x", s.Name)
	assert.InDelta(t, 5, s.Mean, 0.15)
	assert.InDelta(t, 2, s.SD, 0.15)
	assert.InDelta(t, 5, s.Median, 0.2)
	assert.Less(t, s.Lower, s.Median)
	assert.Less(t, s.Median, s.Upper)
	// Independent draws: the 95% interval should be near mu +/- 1.96 sd.
	assert.InDelta(t, 5-1.96*2, s.Lower, 0.4)
	assert.InDelta(t, 5+1.96*2, s.Upper, 0.4)
}

func TestGelmanRubin_WellMixedNearOne(t *testing.T) {
	c := gaussianChains(t, 4, 2000, 0, 1, 2)
	series, err := c.Series("x")
	require.NoError(t, err)

	rhat := GelmanRubin(series)
	assert.InDelta(t, 1.0, rhat, 0.05)
}

func TestGelmanRubin_DetectsDisagreement(t *testing.T) {
	a := gaussianChains(t, 1, 2000, 0, 1, 3)
	b := gaussianChains(t, 1, 2000, 6, 1, 4)
	series := [][]float64{}
	sa, _ := a.Series("x")
	sb, _ := b.Series("x")
	series = append(series, sa...)
	series = append(series, sb...)

	rhat := GelmanRubin(series)
	assert.Greater(t, rhat, 1.5)
}

func TestEffectiveSampleSize_IndependentDraws(t *testing.T) {
	c := gaussianChains(t, 2, 2000, 0, 1, 5)
	series, err := c.Series("x")
	require.NoError(t, err)

	ess := EffectiveSampleSize(series)
	total := 4000.0
	assert.Greater(t, ess, 0.5*total)
	assert.LessOrEqual(t, ess, total)
}

func TestEffectiveSampleSize_CorrelatedDrawsShrink(t *testing.T) {
	// AR(1) with strong autocorrelation.
	rng := rand.New(rand.NewSource(6))
	n := 4000
	s := make([]float64, n)
	for i := 1; i < n; i++ {
		s[i] = 0.95*s[i-1] + rng.NormFloat64()
	}
	ess := EffectiveSampleSize([][]float64{s})
	assert.Less(t, ess, 0.2*float64(n))
}

type fixedReplicator struct {
	repAlwaysLarger bool
}

func (f fixedReplicator) Replicate(theta []float64, rng *rand.Rand) (float64, float64) {
	if f.repAlwaysLarger {
		return 1, 2
	}
	return 2, 1
}

func TestPValue_Bounds(t *testing.T) {
	c := gaussianChains(t, 2, 100, 0, 1, 7)
	rng := rand.New(rand.NewSource(1))

	p, err := PValue(c, fixedReplicator{repAlwaysLarger: true}, rng)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)

	p, err = PValue(c, fixedReplicator{repAlwaysLarger: false}, rng)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)

	_, err = PValue(chainsFrom([]string{"x"}, nil), fixedReplicator{}, rng)
	assert.Error(t, err)
}
