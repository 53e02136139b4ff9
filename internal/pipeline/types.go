// Package pipeline implements the regional aggregation and comparison
// pipeline: filter/normalize → per-capita join → population-weighted
// aggregation → reference comparison. Each stage is a pure function of its
// inputs; the only state a run leaves behind is whatever the caller writes
// from the Result.
package pipeline

import (
	"github.com/regionfact/regionfact/internal/obs"
	"github.com/regionfact/regionfact/internal/stats"
)

// Row is a normalized observation with canonical field names.
type Row struct {
	Country string
	Region  string
	Level   obs.Level
	Year    int
	Value   float64
}

// PerCapitaRecord is the inner join of a GDP row and a population row
// sharing (country, region, level, year). GDP keeps the stored denomination
// (see config.GDPMultiplier); PerCapita is in display units.
type PerCapitaRecord struct {
	Country    string
	Region     string
	Level      obs.Level
	Year       int
	GDP        float64
	Population float64
	PerCapita  float64
}

// AggregateGroup is a population-weighted aggregate over a set of
// PerCapitaRecords sharing a grouping key. Weighted is ΣGDP/Σpopulation in
// display units, not the mean of the per-record ratios.
type AggregateGroup struct {
	Key           string
	Weighted      float64
	Count         int
	SumGDP        float64
	SumPopulation float64
	Dist          stats.Summary
}

// Comparison is the verdict on a claim aggregate against a reference value.
// ClaimHolds uses exact floating-point <; Difference carries the signed gap
// so callers can apply their own significance threshold.
type Comparison struct {
	Aggregate      float64
	Reference      float64
	ReferenceLevel obs.Level
	Difference     float64
	ClaimHolds     bool
	RecordsBelow   int
}

// LevelYearCount reports how many joined per-capita records exist for one
// (level, year) combination, before year selection.
type LevelYearCount struct {
	Level obs.Level
	Year  int
	Count int
}
