package pipeline

import (
	"sort"

	"github.com/regionfact/regionfact/internal/obs"
)

// Criteria selects the observations a Normalize pass keeps.
type Criteria struct {
	Countries []string
	Measure   obs.Measure
	// Unit and Multiplier are matched only when FilterUnit is set; GDP
	// observations come in several denominations, population rows in one.
	Unit       string
	Multiplier int
	FilterUnit bool
	// Year of 0 keeps all years.
	Year int
}

func (c Criteria) matches(o obs.Observation) bool {
	if o.Measure != c.Measure {
		return false
	}
	if len(c.Countries) > 0 {
		found := false
		for _, country := range c.Countries {
			if o.CountryCode == country {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if c.FilterUnit && (o.Unit != c.Unit || o.UnitMultiplier != c.Multiplier) {
		return false
	}
	if c.Year != 0 && o.Year != c.Year {
		return false
	}
	return true
}

type rowKey struct {
	country string
	region  string
	level   obs.Level
	year    int
}

// Normalize selects the observations matching criteria and renames fields
// to canonical names. Duplicate rows sharing (country, region, level, year)
// are revisions of the same observation, not economically distinct values,
// and collapse to their arithmetic mean. Running Normalize again over its own
// output criteria-matched rows is a no-op. An empty result is valid and
// propagates silently.
func Normalize(observations []obs.Observation, criteria Criteria) []Row {
	sums := make(map[rowKey]float64)
	counts := make(map[rowKey]int)
	for _, o := range observations {
		if !criteria.matches(o) {
			continue
		}
		k := rowKey{o.CountryCode, o.RegionCode, o.Level, o.Year}
		sums[k] += o.Value
		counts[k]++
	}

	rows := make([]Row, 0, len(sums))
	for k, sum := range sums {
		rows = append(rows, Row{
			Country: k.country,
			Region:  k.region,
			Level:   k.level,
			Year:    k.year,
			Value:   sum / float64(counts[k]),
		})
	}
	sortRows(rows)
	return rows
}

func sortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Country != b.Country {
			return a.Country < b.Country
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		return a.Year < b.Year
	})
}
