package pipeline

import (
	"log/slog"
)

// PerCapita inner-joins normalized GDP and population rows on
// (country, region, level, year) and computes per-capita values:
//
//	perCapita = gdp × unitScale / population / displayScale
//
// Regions present in only one input are dropped; missing either side of the
// join means the region cannot be compared, and that exclusion is policy,
// not an accident. Records with non-positive population are a data-quality
// signal: they are excluded with a warning and counted in the second return
// value rather than treated as an error.
func PerCapita(log *slog.Logger, gdp, population []Row, unitScale, displayScale float64) ([]PerCapitaRecord, int) {
	popByKey := make(map[rowKey]float64, len(population))
	for _, r := range population {
		popByKey[rowKey{r.Country, r.Region, r.Level, r.Year}] = r.Value
	}

	var invalid int
	records := make([]PerCapitaRecord, 0, len(gdp))
	for _, g := range gdp {
		pop, ok := popByKey[rowKey{g.Country, g.Region, g.Level, g.Year}]
		if !ok {
			continue
		}
		if pop <= 0 {
			log.Warn("excluding region with non-positive population",
				"country", g.Country, "region", g.Region, "level", g.Level, "year", g.Year, "population", pop)
			invalid++
			continue
		}
		records = append(records, PerCapitaRecord{
			Country:    g.Country,
			Region:     g.Region,
			Level:      g.Level,
			Year:       g.Year,
			GDP:        g.Value,
			Population: pop,
			PerCapita:  g.Value * unitScale / pop / displayScale,
		})
	}
	return records, invalid
}
