package plot

import (
	"slices"

	"github.com/RMahshie/dwarfmag/pkg/models"
)

// MagnitudeChart plots absolute magnitude against temperature, one line per
// broad-band filter. Filters flagged narrow-band in refs are left out.
func MagnitudeChart(table models.MagnitudeTable, refs []models.FilterRef) Chart {
	narrow := make(map[string]bool)
	for _, r := range refs {
		if r.NarrowBand {
			narrow[r.ID] = true
		}
	}

	temps := toFloats(table.Temperatures())
	chart := Chart{
		Title:   "Synthetic AB magnitudes",
		XLabel:  "Teff (K)",
		YLabel:  "M (AB mag)",
		InvertY: true,
	}
	for _, id := range table.Filters() {
		if narrow[id] {
			continue
		}
		y, _ := table.Series(id)
		chart.Series = append(chart.Series, Series{Label: id, X: temps, Y: y})
	}
	return chart
}

// LimitsChart plots detection distance against temperature on a log scale
func LimitsChart(limits []models.DetectionLimit) Chart {
	chart := Chart{
		Title:  "Detection distance limits",
		XLabel: "Teff (K)",
		YLabel: "distance (pc)",
		LogY:   true,
	}

	byFilter := make(map[string]*Series)
	var order []string
	for _, l := range limits {
		s, ok := byFilter[l.FilterID]
		if !ok {
			s = &Series{Label: l.FilterID}
			byFilter[l.FilterID] = s
			order = append(order, l.FilterID)
		}
		s.X = append(s.X, float64(l.Teff))
		s.Y = append(s.Y, l.DistancePc)
	}
	slices.Sort(order)
	for _, id := range order {
		chart.Series = append(chart.Series, *byFilter[id])
	}
	return chart
}

func toFloats(v []int) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
