// Package report renders the human-readable summary of a pipeline run.
// Formatting is not load-bearing; the values are.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/regionfact/regionfact/internal/config"
	"github.com/regionfact/regionfact/internal/obs"
	"github.com/regionfact/regionfact/internal/pipeline"
)

// Print writes the full console report for one pipeline run.
func Print(w io.Writer, res pipeline.Result, cfg config.Config) {
	fmt.Fprintf(w, "Year: %d\n", res.Year)
	fmt.Fprintf(w, "GDP unit: %s (multiplier 1e%d), per-capita values in %s/%.0f\n",
		cfg.GDPUnit, cfg.GDPMultiplier, cfg.GDPUnit, cfg.DisplayScale)
	if res.InvalidPopulation > 0 {
		fmt.Fprintf(w, "Excluded %d record(s) with non-positive population\n", res.InvalidPopulation)
	}
	fmt.Fprintln(w)

	printAvailability(w, res.Availability)
	printTopRegions(w, res.PerCapita, cfg.TopRegions)
	printNational(w, res.National)
	printExclusion(w, res, cfg)
	printVerdict(w, res, cfg)
}

func printAvailability(w io.Writer, counts []pipeline.LevelYearCount) {
	fmt.Fprintln(w, "Joined GDP+population records by level and year:")
	table := newTable(w)
	table.SetHeader([]string{"Level", "Year", "Records"})
	for _, c := range counts {
		table.Append([]string{string(c.Level), fmt.Sprintf("%d", c.Year), fmt.Sprintf("%d", c.Count)})
	}
	table.Render()
	fmt.Fprintln(w)
}

func printTopRegions(w io.Writer, records []pipeline.PerCapitaRecord, topN int) {
	byLevel := map[obs.Level][]pipeline.PerCapitaRecord{}
	for _, r := range records {
		byLevel[r.Level] = append(byLevel[r.Level], r)
	}
	levels := make([]obs.Level, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	for _, level := range levels {
		recs := byLevel[level]
		sort.Slice(recs, func(i, j int) bool { return recs[i].PerCapita > recs[j].PerCapita })
		if len(recs) > topN {
			recs = recs[:topN]
		}
		fmt.Fprintf(w, "Top %d regions by GDP per capita (%s):\n", len(recs), level)
		table := newTable(w)
		table.SetHeader([]string{"Country", "Region", "GDP/capita", "Population"})
		for _, r := range recs {
			table.Append([]string{
				r.Country,
				r.Region,
				fmt.Sprintf("%.1f", r.PerCapita),
				fmt.Sprintf("%.0f", r.Population),
			})
		}
		table.Render()
		fmt.Fprintln(w)
	}
}

func printNational(w io.Writer, groups []pipeline.AggregateGroup) {
	fmt.Fprintln(w, "National population-weighted GDP per capita:")
	table := newTable(w)
	table.SetHeader([]string{"Country", "Weighted GDP/capita", "Regions"})
	for _, g := range groups {
		table.Append([]string{g.Key, fmt.Sprintf("%.1f", g.Weighted), fmt.Sprintf("%d", g.Count)})
	}
	table.Render()
	fmt.Fprintln(w)
}

func printExclusion(w io.Writer, res pipeline.Result, cfg config.Config) {
	prefix := cfg.CapitalPrefixes[cfg.ClaimCountry]
	fmt.Fprintf(w, "%s with and without capital regions (prefix %s, level %s):\n",
		cfg.ClaimCountry, prefix, cfg.ClaimLevel)
	table := newTable(w)
	table.SetHeader([]string{"Scope", "Weighted GDP/capita", "Regions"})
	table.Append([]string{"National", fmt.Sprintf("%.1f", res.ClaimNational.Weighted), fmt.Sprintf("%d", res.ClaimNational.Count)})
	table.Append([]string{"Excluding capital", fmt.Sprintf("%.1f", res.ExcludingCapital.Weighted), fmt.Sprintf("%d", res.ExcludingCapital.Count)})
	table.Append([]string{"Capital only", "", fmt.Sprintf("%d", res.CapitalCount)})
	table.Render()
	fmt.Fprintln(w)
}

func printVerdict(w io.Writer, res pipeline.Result, cfg config.Config) {
	c := res.Comparison
	verdict := "NOT SUPPORTED"
	if c.ClaimHolds {
		verdict = "VERIFIED"
	}
	fmt.Fprintf(w, "Reference: %s/%s at %s = %.1f\n",
		cfg.Reference.Country, cfg.Reference.Region, c.ReferenceLevel, c.Reference)
	fmt.Fprintf(w, "%s excluding capital = %.1f, difference %+.1f → claim %s\n",
		cfg.ClaimCountry, c.Aggregate, c.Difference, verdict)
	fmt.Fprintf(w, "%d of %d %s regions fall below the reference individually\n",
		c.RecordsBelow, res.ExcludingCapital.Count, cfg.ClaimCountry)
	fmt.Fprintln(w)

	d := res.ExcludingCapital.Dist
	fmt.Fprintf(w, "Distribution of per-capita values, %s excluding capital:\n", cfg.ClaimCountry)
	table := newTable(w)
	table.SetHeader([]string{"Min", "Q1", "Median", "Mean", "Q3", "Max", "StdDev"})
	table.Append([]string{
		fmt.Sprintf("%.1f", d.Min),
		fmt.Sprintf("%.1f", d.Q1),
		fmt.Sprintf("%.1f", d.Median),
		fmt.Sprintf("%.1f", d.Mean),
		fmt.Sprintf("%.1f", d.Q3),
		fmt.Sprintf("%.1f", d.Max),
		fmt.Sprintf("%.1f", d.StdDev),
	})
	table.Render()
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetBorder(true)
	return table
}
