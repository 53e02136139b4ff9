package pipeline

import (
	"sort"
	"strings"

	"github.com/regionfact/regionfact/internal/stats"
)

// KeyFunc maps a record to its grouping key.
type KeyFunc func(PerCapitaRecord) string

// ExcludeFunc reports whether a record is excluded from aggregation.
type ExcludeFunc func(PerCapitaRecord) bool

// ByCountry groups records by country code.
func ByCountry() KeyFunc {
	return func(r PerCapitaRecord) string { return r.Country }
}

// CapitalPrefixExcluder builds the capital-region membership predicate from
// the country-keyed prefix table: a record is excluded when its region code
// starts with its country's configured capital prefix. Countries absent
// from the table exclude nothing.
func CapitalPrefixExcluder(prefixes map[string]string) ExcludeFunc {
	return func(r PerCapitaRecord) bool {
		prefix, ok := prefixes[r.Country]
		if !ok {
			return false
		}
		return strings.HasPrefix(r.Region, prefix)
	}
}

// Aggregate produces one population-weighted AggregateGroup per distinct
// key among records the exclusion predicate (nil = none) does not remove.
// The group value is sum(GDP)*unitScale / sum(population) / displayScale:
// weighting by population, never averaging the per-record ratios. Dist
// summarizes the
// unweighted per-capita values within the group.
func Aggregate(records []PerCapitaRecord, unitScale, displayScale float64, key KeyFunc, exclude ExcludeFunc) []AggregateGroup {
	byKey := make(map[string]*AggregateGroup)
	perCapita := make(map[string][]float64)
	for _, r := range records {
		if exclude != nil && exclude(r) {
			continue
		}
		k := key(r)
		g, ok := byKey[k]
		if !ok {
			g = &AggregateGroup{Key: k}
			byKey[k] = g
		}
		g.Count++
		g.SumGDP += r.GDP
		g.SumPopulation += r.Population
		perCapita[k] = append(perCapita[k], r.PerCapita)
	}

	groups := make([]AggregateGroup, 0, len(byKey))
	for k, g := range byKey {
		if g.SumPopulation > 0 {
			g.Weighted = g.SumGDP * unitScale / g.SumPopulation / displayScale
		}
		g.Dist = stats.Summarize(perCapita[k])
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}
