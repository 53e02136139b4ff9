package pipeline

import (
	"errors"
	"fmt"

	"github.com/regionfact/regionfact/internal/obs"
)

// ErrReferenceNotFound means the reference region has no per-capita record
// at any configured level. There is no further fallback; this is a fatal
// configuration error.
var ErrReferenceNotFound = errors.New("reference region not found at any configured level")

// ReferenceValue looks up the reference entity's own per-capita value. The
// levels list is a preference order: fine-grained first, with a single
// fixed fallback pass to coarser levels when the preferred level has no
// matching row.
func ReferenceValue(records []PerCapitaRecord, country, region string, levels []obs.Level) (float64, obs.Level, error) {
	for _, level := range levels {
		for _, r := range records {
			if r.Country == country && r.Region == region && r.Level == level {
				return r.PerCapita, level, nil
			}
		}
	}
	return 0, "", fmt.Errorf("%w: %s/%s at levels %v", ErrReferenceNotFound, country, region, levels)
}

// Compare produces the verdict on aggregate against reference. The boolean
// uses exact floating-point <, with no tolerance band; the signed
// difference is exposed alongside so callers can judge significance
// themselves. RecordsBelow counts the individual records whose own
// per-capita value falls below the reference.
func Compare(aggregate, reference float64, referenceLevel obs.Level, records []PerCapitaRecord) Comparison {
	below := 0
	for _, r := range records {
		if r.PerCapita < reference {
			below++
		}
	}
	return Comparison{
		Aggregate:      aggregate,
		Reference:      reference,
		ReferenceLevel: referenceLevel,
		Difference:     aggregate - reference,
		ClaimHolds:     aggregate < reference,
		RecordsBelow:   below,
	}
}
