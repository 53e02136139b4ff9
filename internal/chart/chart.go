// Package chart draws the static comparison chart from a pipeline result.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/regionfact/regionfact/internal/config"
	"github.com/regionfact/regionfact/internal/pipeline"
)

// Render saves a bar chart comparing the claim country's national and
// capital-excluded aggregates against the reference value.
func Render(res pipeline.Result, cfg config.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("GDP per capita, %d", res.Year)
	p.Y.Label.Text = fmt.Sprintf("%s per capita (/%.0f)", cfg.GDPUnit, cfg.DisplayScale)

	values := plotter.Values{
		res.ClaimNational.Weighted,
		res.ExcludingCapital.Weighted,
		res.Comparison.Reference,
	}
	labels := []string{
		cfg.ClaimCountry,
		fmt.Sprintf("%s excl. capital", cfg.ClaimCountry),
		fmt.Sprintf("%s/%s", cfg.Reference.Country, cfg.Reference.Region),
	}

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	bars.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.Add(plotter.NewGrid())
	p.NominalX(labels...)
	p.Y.Min = 0

	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}
