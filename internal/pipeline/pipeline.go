package pipeline

import (
	"log/slog"
	"math"
	"sort"

	"github.com/regionfact/regionfact/internal/config"
	"github.com/regionfact/regionfact/internal/obs"
)

// Result is everything one pipeline run derives from the observation set.
// It is recomputed on every run and never persisted except through the
// snapshot writer.
type Result struct {
	Year int

	// Availability counts joined records per (level, year) across all
	// years, before year selection.
	Availability []LevelYearCount

	// PerCapita is the full joined table for the selected year.
	PerCapita []PerCapitaRecord

	// National holds one population-weighted group per country at the
	// claim level, without any exclusion.
	National []AggregateGroup

	// ExcludingCapital is the claim country's aggregate with capital
	// regions removed; ClaimNational is the same aggregate unfiltered.
	ExcludingCapital AggregateGroup
	ClaimNational    AggregateGroup
	// CapitalCount is how many claim-country records the capital prefix
	// removed. ClaimNational.Count = ExcludingCapital.Count + CapitalCount.
	CapitalCount int

	Comparison Comparison

	// InvalidPopulation counts records excluded for non-positive
	// population during the join.
	InvalidPopulation int
}

// Run executes the full pipeline over observations with cfg. It is a pure
// function of its inputs: callable repeatedly, no retained state.
func Run(log *slog.Logger, observations []obs.Observation, cfg config.Config) (Result, error) {
	unitScale := math.Pow10(cfg.GDPMultiplier)

	gdp := Normalize(observations, Criteria{
		Countries:  cfg.Countries,
		Measure:    obs.MeasureGDP,
		Unit:       cfg.GDPUnit,
		Multiplier: cfg.GDPMultiplier,
		FilterUnit: true,
	})
	population := Normalize(observations, Criteria{
		Countries: cfg.Countries,
		Measure:   obs.MeasurePopulation,
	})

	joined, invalid := PerCapita(log, gdp, population, unitScale, cfg.DisplayScale)

	res := Result{
		Year:              cfg.Year,
		Availability:      availability(joined),
		InvalidPopulation: invalid,
	}

	for _, r := range joined {
		if r.Year == cfg.Year {
			res.PerCapita = append(res.PerCapita, r)
		}
	}
	if len(res.PerCapita) == 0 {
		log.Warn("no joined records for selected year", "year", cfg.Year)
	}

	claimRecords := make([]PerCapitaRecord, 0, len(res.PerCapita))
	levelRecords := make([]PerCapitaRecord, 0, len(res.PerCapita))
	for _, r := range res.PerCapita {
		if r.Level != cfg.ClaimLevel {
			continue
		}
		levelRecords = append(levelRecords, r)
		if r.Country == cfg.ClaimCountry {
			claimRecords = append(claimRecords, r)
		}
	}

	res.National = Aggregate(levelRecords, unitScale, cfg.DisplayScale, ByCountry(), nil)
	for _, g := range res.National {
		if g.Key == cfg.ClaimCountry {
			res.ClaimNational = g
		}
	}

	excluder := CapitalPrefixExcluder(cfg.CapitalPrefixes)
	exclGroups := Aggregate(claimRecords, unitScale, cfg.DisplayScale, ByCountry(), excluder)
	if len(exclGroups) > 0 {
		res.ExcludingCapital = exclGroups[0]
	} else {
		res.ExcludingCapital = AggregateGroup{Key: cfg.ClaimCountry}
	}
	res.CapitalCount = res.ClaimNational.Count - res.ExcludingCapital.Count

	ref, refLevel, err := ReferenceValue(res.PerCapita, cfg.Reference.Country, cfg.Reference.Region, cfg.Reference.Levels)
	if err != nil {
		return Result{}, err
	}
	log.Debug("resolved reference value",
		"country", cfg.Reference.Country, "region", cfg.Reference.Region, "level", refLevel, "value", ref)

	kept := make([]PerCapitaRecord, 0, len(claimRecords))
	for _, r := range claimRecords {
		if !excluder(r) {
			kept = append(kept, r)
		}
	}
	res.Comparison = Compare(res.ExcludingCapital.Weighted, ref, refLevel, kept)

	return res, nil
}

func availability(records []PerCapitaRecord) []LevelYearCount {
	type levelYear struct {
		level obs.Level
		year  int
	}
	counts := make(map[levelYear]int)
	for _, r := range records {
		counts[levelYear{r.Level, r.Year}]++
	}
	out := make([]LevelYearCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, LevelYearCount{Level: k.level, Year: k.year, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].Year < out[j].Year
	})
	return out
}
