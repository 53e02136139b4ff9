// Package config defines the run configuration for the comparison pipeline.
// Everything the pipeline's behavior depends on (countries, measures, units,
// the year, the capital-region prefix table, the reference entity) lives
// here rather than as constants inside the pipeline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/regionfact/regionfact/internal/obs"
)

// Reference identifies the entity whose per-capita value the claim is
// compared against. Levels is the lookup preference order: the first level
// with a matching row wins, and exhausting the list is a fatal
// configuration error.
type Reference struct {
	Country string      `yaml:"country"`
	Region  string      `yaml:"region"`
	Levels  []obs.Level `yaml:"levels"`
}

type Config struct {
	// Countries are the country codes kept by the filter stage.
	Countries []string `yaml:"countries"`
	// Year selects the time period the claim is evaluated for.
	Year int `yaml:"year"`

	// GDPUnit and GDPMultiplier select which GDP observations are
	// comparable: unit of measure (e.g. PPP-adjusted USD) and the stored
	// power-of-ten multiplier (6 = millions).
	GDPUnit       string `yaml:"gdp_unit"`
	GDPMultiplier int    `yaml:"gdp_multiplier"`

	// DisplayScale converts per-capita values into the display
	// denomination (1000 = thousands of currency units).
	DisplayScale float64 `yaml:"display_scale"`

	// ClaimCountry is the country the capital-exclusion aggregate is
	// computed for, at ClaimLevel granularity.
	ClaimCountry string    `yaml:"claim_country"`
	ClaimLevel   obs.Level `yaml:"claim_level"`

	// CapitalPrefixes maps a country code to the region-code prefix that
	// identifies its capital region. Region codes are a prefix hierarchy:
	// every finer-grained code under a capital region extends this prefix.
	// The mapping is maintained here, explicitly, because its correctness
	// depends on the upstream source keeping its coding convention stable.
	CapitalPrefixes map[string]string `yaml:"capital_prefixes"`

	Reference Reference `yaml:"reference"`

	// TopRegions is how many regions per level the console report lists.
	TopRegions int `yaml:"top_regions"`
}

// Default returns the configuration for the published claim this tool was
// built to check: the UK excluding Greater London against Mississippi.
func Default() Config {
	return Config{
		Countries:     []string{"GBR", "USA", "FRA"},
		Year:          2019,
		GDPUnit:       "USD_PPP",
		GDPMultiplier: 6,
		DisplayScale:  1000,
		ClaimCountry:  "GBR",
		ClaimLevel:    obs.TL3,
		CapitalPrefixes: map[string]string{
			"GBR": "UKI",  // Greater London
			"FRA": "FR10", // Île-de-France
			"USA": "US11", // District of Columbia
		},
		Reference: Reference{
			Country: "USA",
			Region:  "US28", // Mississippi, present only at TL2
			Levels:  []obs.Level{obs.TL3, obs.TL2},
		},
		TopRegions: 10,
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.Countries) == 0 {
		return fmt.Errorf("at least one country is required")
	}
	if c.Year <= 0 {
		return fmt.Errorf("year is required")
	}
	if c.DisplayScale <= 0 {
		return fmt.Errorf("display scale must be positive, got %v", c.DisplayScale)
	}
	if c.ClaimCountry == "" {
		return fmt.Errorf("claim country is required")
	}
	if c.ClaimLevel != obs.TL2 && c.ClaimLevel != obs.TL3 {
		return fmt.Errorf("claim level must be %s or %s, got %q", obs.TL2, obs.TL3, c.ClaimLevel)
	}
	if _, ok := c.CapitalPrefixes[c.ClaimCountry]; !ok {
		return fmt.Errorf("no capital prefix configured for claim country %s", c.ClaimCountry)
	}
	if c.Reference.Country == "" || c.Reference.Region == "" {
		return fmt.Errorf("reference country and region are required")
	}
	if len(c.Reference.Levels) == 0 {
		return fmt.Errorf("reference level preference list is required")
	}
	if c.TopRegions <= 0 {
		return fmt.Errorf("top regions must be positive, got %d", c.TopRegions)
	}
	return nil
}
