package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regionfact/regionfact/internal/config"
	"github.com/regionfact/regionfact/internal/obs"
)

func claimObservations() []obs.Observation {
	return []obs.Observation{
		// UKI1 GDP arrives as two revisions that must collapse to 500,000.
		gdpObs("GBR", "UKI1", obs.TL3, 2019, 400_000),
		gdpObs("GBR", "UKI1", obs.TL3, 2019, 600_000),
		popObs("GBR", "UKI1", obs.TL3, 2019, 5_000_000),

		gdpObs("GBR", "UKI2", obs.TL3, 2019, 100_000),
		popObs("GBR", "UKI2", obs.TL3, 2019, 2_000_000),

		gdpObs("GBR", "UKX1", obs.TL3, 2019, 120_000),
		popObs("GBR", "UKX1", obs.TL3, 2019, 3_000_000),

		gdpObs("GBR", "UKJ1", obs.TL3, 2019, 60_000),
		popObs("GBR", "UKJ1", obs.TL3, 2019, 2_000_000),

		// Reference exists only at the coarse level.
		gdpObs("USA", "US28", obs.TL2, 2019, 124_500),
		popObs("USA", "US28", obs.TL2, 2019, 3_000_000),

		// A prior year, visible in availability but not selected.
		gdpObs("GBR", "UKJ1", obs.TL3, 2018, 55_000),
		popObs("GBR", "UKJ1", obs.TL3, 2018, 2_000_000),
	}
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	res, err := Run(discard(), claimObservations(), cfg)
	require.NoError(t, err)

	t.Run("availability_spans_all_years", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []LevelYearCount{
			{Level: obs.TL2, Year: 2019, Count: 1},
			{Level: obs.TL3, Year: 2018, Count: 1},
			{Level: obs.TL3, Year: 2019, Count: 4},
		}, res.Availability)
	})

	t.Run("year_selection", func(t *testing.T) {
		t.Parallel()
		assert.Len(t, res.PerCapita, 5)
		for _, r := range res.PerCapita {
			assert.Equal(t, 2019, r.Year)
		}
	})

	t.Run("revisions_collapsed_before_join", func(t *testing.T) {
		t.Parallel()
		for _, r := range res.PerCapita {
			if r.Region == "UKI1" {
				assert.InDelta(t, 100.0, r.PerCapita, 1e-9)
			}
		}
	})

	t.Run("national_weighted_aggregate", func(t *testing.T) {
		t.Parallel()
		require.Len(t, res.National, 1) // only GBR has records at the claim level
		assert.Equal(t, "GBR", res.National[0].Key)
		// 780,000 × 1e6 / 12,000,000 / 1000
		assert.InDelta(t, 65.0, res.ClaimNational.Weighted, 1e-9)
		assert.Equal(t, 4, res.ClaimNational.Count)
	})

	t.Run("capital_exclusion_aggregate", func(t *testing.T) {
		t.Parallel()
		// 180,000 × 1e6 / 5,000,000 / 1000
		assert.InDelta(t, 36.0, res.ExcludingCapital.Weighted, 1e-9)
		assert.Equal(t, 2, res.ExcludingCapital.Count)
		assert.Equal(t, 2, res.CapitalCount)
		assert.Equal(t, res.ClaimNational.Count, res.ExcludingCapital.Count+res.CapitalCount)
	})

	t.Run("reference_fallback_and_verdict", func(t *testing.T) {
		t.Parallel()
		c := res.Comparison
		assert.Equal(t, obs.TL2, c.ReferenceLevel)
		assert.InDelta(t, 41.5, c.Reference, 1e-9)
		assert.True(t, c.ClaimHolds)
		assert.InDelta(t, -5.5, c.Difference, 1e-9)
		assert.Equal(t, 2, c.RecordsBelow) // UKX1 at 40, UKJ1 at 30
	})

	t.Run("distribution_over_kept_records", func(t *testing.T) {
		t.Parallel()
		d := res.ExcludingCapital.Dist
		assert.Equal(t, 2, d.Count)
		assert.InDelta(t, 30.0, d.Min, 1e-9)
		assert.InDelta(t, 40.0, d.Max, 1e-9)
		assert.InDelta(t, 35.0, d.Mean, 1e-9)
	})
}

func TestPipeline_Run_ReferenceMissing(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	observations := []obs.Observation{
		gdpObs("GBR", "UKJ1", obs.TL3, 2019, 60_000),
		popObs("GBR", "UKJ1", obs.TL3, 2019, 2_000_000),
	}
	_, err := Run(discard(), observations, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestPipeline_Run_RepeatedRunsAgree(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	observations := claimObservations()
	first, err := Run(discard(), observations, cfg)
	require.NoError(t, err)
	second, err := Run(discard(), observations, cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
