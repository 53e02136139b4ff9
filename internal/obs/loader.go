package obs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
)

// ErrNoData is returned when the cache file exists but yields zero usable
// observations. The pipeline must fail fast on it rather than proceed on
// partial state.
var ErrNoData = errors.New("no observations in cached dataset")

var requiredColumns = []string{
	"country_code",
	"region_code",
	"territorial_level",
	"measure_type",
	"unit_of_measure",
	"unit_multiplier",
	"time_period",
	"observed_value",
}

// LoadCSV reads the pre-fetched observation table from a local cache file.
// Columns are resolved by header name, so column order is not significant.
// Rows with unparseable numeric fields are skipped with a warning; a file
// that yields no rows at all is an ErrNoData failure.
func LoadCSV(log *slog.Logger, path string) ([]Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cached dataset: %w", err)
	}
	defer f.Close()

	observations, err := ReadCSV(log, f)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached dataset %s: %w", path, err)
	}
	return observations, nil
}

// ReadCSV parses observations from r. See LoadCSV.
func ReadCSV(log *slog.Logger, r io.Reader) ([]Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var observations []Observation
	var skipped int
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row at line %d: %w", line, err)
		}

		value, err := strconv.ParseFloat(record[col["observed_value"]], 64)
		if err != nil {
			log.Warn("skipping row with unparseable value", "line", line, "error", err)
			skipped++
			continue
		}
		year, err := strconv.Atoi(record[col["time_period"]])
		if err != nil {
			log.Warn("skipping row with unparseable time period", "line", line, "error", err)
			skipped++
			continue
		}
		multiplier, err := strconv.Atoi(record[col["unit_multiplier"]])
		if err != nil {
			log.Warn("skipping row with unparseable unit multiplier", "line", line, "error", err)
			skipped++
			continue
		}

		observations = append(observations, Observation{
			CountryCode:    record[col["country_code"]],
			RegionCode:     record[col["region_code"]],
			Level:          Level(record[col["territorial_level"]]),
			Measure:        Measure(record[col["measure_type"]]),
			Unit:           record[col["unit_of_measure"]],
			UnitMultiplier: multiplier,
			Year:           year,
			Value:          value,
		})
	}

	if len(observations) == 0 {
		return nil, ErrNoData
	}
	if skipped > 0 {
		log.Debug("loaded observations", "rows", len(observations), "skipped", skipped)
	}
	return observations, nil
}
