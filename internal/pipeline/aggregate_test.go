package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regionfact/regionfact/internal/obs"
)

func record(country, region string, gdp, population float64) PerCapitaRecord {
	return PerCapitaRecord{
		Country:    country,
		Region:     region,
		Level:      obs.TL3,
		Year:       2019,
		GDP:        gdp,
		Population: population,
		PerCapita:  gdp * 1e6 / population / 1000,
	}
}

func TestPipeline_Aggregate(t *testing.T) {
	t.Parallel()

	t.Run("empty_input_empty_output", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Aggregate(nil, 1e6, 1000, ByCountry(), nil))
	})

	t.Run("single_record_group_equals_own_ratio", func(t *testing.T) {
		t.Parallel()
		r := record("GBR", "UKI1", 200_000, 4_000_000)
		groups := Aggregate([]PerCapitaRecord{r}, 1e6, 1000, ByCountry(), nil)
		require.Len(t, groups, 1)
		assert.InDelta(t, r.PerCapita, groups[0].Weighted, 1e-12)
		assert.Equal(t, 1, groups[0].Count)
		assert.InDelta(t, r.PerCapita, groups[0].Dist.Mean, 1e-12)
	})

	t.Run("weighted_not_mean_of_ratios", func(t *testing.T) {
		t.Parallel()
		// Region A: 100k/capita on 1M people; region B: 10k/capita on 9M.
		records := []PerCapitaRecord{
			record("GBR", "UKA", 100_000, 1_000_000),
			record("GBR", "UKB", 90_000, 9_000_000),
		}
		groups := Aggregate(records, 1e6, 1000, ByCountry(), nil)
		require.Len(t, groups, 1)
		// (190,000 × 1e6) / 10,000,000 / 1000 = 19.0 — dominated by B's
		// population, far from the 55.0 a mean of ratios would give.
		assert.InDelta(t, 19.0, groups[0].Weighted, 1e-9)
		assert.InDelta(t, 55.0, groups[0].Dist.Mean, 1e-9)
	})

	t.Run("split_invariance", func(t *testing.T) {
		t.Parallel()
		whole := []PerCapitaRecord{
			record("GBR", "UKA", 300_000, 6_000_000),
			record("GBR", "UKB", 100_000, 1_000_000),
		}
		// Split UKA into two records with the same per-capita ratio but the
		// population divided arbitrarily between them.
		split := []PerCapitaRecord{
			record("GBR", "UKA1", 50_000, 1_000_000),
			record("GBR", "UKA2", 250_000, 5_000_000),
			record("GBR", "UKB", 100_000, 1_000_000),
		}
		wholeGroups := Aggregate(whole, 1e6, 1000, ByCountry(), nil)
		splitGroups := Aggregate(split, 1e6, 1000, ByCountry(), nil)
		require.Len(t, wholeGroups, 1)
		require.Len(t, splitGroups, 1)
		assert.InDelta(t, wholeGroups[0].Weighted, splitGroups[0].Weighted, 1e-9)
	})

	t.Run("two_identical_ratio_regions_national_scenario", func(t *testing.T) {
		t.Parallel()
		records := []PerCapitaRecord{
			record("USA", "USA1", 1_000_000, 10_000_000),
			record("USA", "USA2", 500_000, 5_000_000),
		}
		groups := Aggregate(records, 1e6, 1000, ByCountry(), nil)
		require.Len(t, groups, 1)
		assert.InDelta(t, 100.0, groups[0].Weighted, 1e-9)
		assert.InDelta(t, 100.0, records[0].PerCapita, 1e-9)
		assert.InDelta(t, 100.0, records[1].PerCapita, 1e-9)
	})

	t.Run("groups_by_key", func(t *testing.T) {
		t.Parallel()
		records := []PerCapitaRecord{
			record("GBR", "UKA", 100, 1000),
			record("FRA", "FR10", 200, 1000),
		}
		groups := Aggregate(records, 1e6, 1000, ByCountry(), nil)
		require.Len(t, groups, 2)
		assert.Equal(t, "FRA", groups[0].Key)
		assert.Equal(t, "GBR", groups[1].Key)
	})
}

func TestPipeline_CapitalPrefixExcluder(t *testing.T) {
	t.Parallel()

	exclude := CapitalPrefixExcluder(map[string]string{"GBR": "UKI"})

	t.Run("prefix_scenario", func(t *testing.T) {
		t.Parallel()
		assert.True(t, exclude(record("GBR", "UKI1", 1, 1)))
		assert.True(t, exclude(record("GBR", "UKI2", 1, 1)))
		assert.False(t, exclude(record("GBR", "UKX1", 1, 1)))
	})

	t.Run("country_without_prefix_not_excluded", func(t *testing.T) {
		t.Parallel()
		assert.False(t, exclude(record("FRA", "UKI1", 1, 1)))
	})

	t.Run("exclusion_count_partition_law", func(t *testing.T) {
		t.Parallel()
		records := []PerCapitaRecord{
			record("GBR", "UKI1", 100, 1000),
			record("GBR", "UKI2", 100, 1000),
			record("GBR", "UKX1", 100, 1000),
			record("GBR", "UKJ1", 100, 1000),
		}
		all := Aggregate(records, 1e6, 1000, ByCountry(), nil)
		kept := Aggregate(records, 1e6, 1000, ByCountry(), exclude)
		require.Len(t, all, 1)
		require.Len(t, kept, 1)
		capital := 0
		for _, r := range records {
			if exclude(r) {
				capital++
			}
		}
		assert.Equal(t, all[0].Count, kept[0].Count+capital)
		assert.Equal(t, 2, kept[0].Count)
	})
}
