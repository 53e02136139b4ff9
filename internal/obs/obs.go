// Package obs holds the source data model: one Observation per
// (region, measure, year) row of the cached regional statistics table.
package obs

// Level is the territorial granularity of a region. TL2 regions are coarse
// subnational units (a US state, a UK region); TL3 regions nest inside them.
type Level string

const (
	TL2 Level = "TL2"
	TL3 Level = "TL3"
)

// Measure identifies what an observation's value measures.
type Measure string

const (
	MeasureGDP        Measure = "GDP"
	MeasurePopulation Measure = "POP"
)

// Observation is a single row of source data. Observations are loaded once
// from the cache file and never mutated.
type Observation struct {
	CountryCode string
	RegionCode  string
	Level       Level
	Measure     Measure
	Unit        string
	// UnitMultiplier is a power-of-ten exponent: a value of 6 means the
	// observed value is denominated in millions.
	UnitMultiplier int
	Year           int
	Value          float64
}
